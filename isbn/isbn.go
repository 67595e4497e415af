// Package isbn converts and checks book identifiers.
//
// Book barcodes carry a 13 digit EAN ("bookland" prefix followed by the nine
// digit ISBN core and an EAN check digit). The Google Books API answers
// isbn: queries for both forms, but older French albums are often only
// indexed under their ISBN-10.
package isbn

import "strings"

// ConvertEANToISBN converts a 13 digit EAN into the matching ISBN-10. It
// returns false unless ean is exactly 13 ASCII digits. The three digit prefix
// is dropped and a fresh ISBN-10 check character is computed; the EAN check
// digit itself is not verified.
func ConvertEANToISBN(ean string) (string, bool) {
	if len(ean) != 13 || !allDigits(ean) {
		return "", false
	}

	core := ean[3:12]
	return core + checkChar10(core), true
}

// ConvertISBNToEAN converts an ISBN-10 into its 978-prefixed EAN-13.
func ConvertISBNToEAN(isbn10 string) (string, bool) {
	if !ValidISBN10(isbn10) {
		return "", false
	}

	body := "978" + isbn10[:9]
	return body + string(rune('0'+eanCheckDigit(body))), true
}

// Sanitize keeps the digits of s plus a trailing check character X, which
// is uppercased. Separators such as spaces and hyphens are dropped.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	trimmed := strings.TrimRight(strings.TrimSpace(s), " -")
	if strings.HasSuffix(trimmed, "x") || strings.HasSuffix(trimmed, "X") {
		b.WriteByte('X')
	}

	return b.String()
}

// ValidISBN10 reports whether s is a 10 character ISBN with a correct check
// character.
func ValidISBN10(s string) bool {
	if len(s) != 10 || !allDigits(s[:9]) {
		return false
	}

	last := s[9]
	if last != 'X' && last != 'x' && (last < '0' || last > '9') {
		return false
	}

	return strings.EqualFold(checkChar10(s[:9]), string(last))
}

// ValidEAN13 reports whether s is 13 digits with a correct EAN check digit.
func ValidEAN13(s string) bool {
	if len(s) != 13 || !allDigits(s) {
		return false
	}
	return int(s[12]-'0') == eanCheckDigit(s[:12])
}

// checkChar10 computes the ISBN-10 check character of a nine digit core:
// weights 10 down to 2, check = (11 - sum mod 11) mod 11, 10 written as X.
func checkChar10(core string) string {
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(core[i]-'0') * (10 - i)
	}

	check := (11 - sum%11) % 11
	if check == 10 {
		return "X"
	}
	return string(rune('0' + check))
}

// eanCheckDigit computes the EAN-13 check digit of a 12 digit body.
func eanCheckDigit(body string) int {
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(body[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return (10 - sum%10) % 10
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
