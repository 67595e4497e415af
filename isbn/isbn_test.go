package isbn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertEANToISBN(t *testing.T) {
	tests := []struct {
		name   string
		ean    string
		want   string
		wantOK bool
	}{
		{name: "french album", ean: "9782505066099", want: "2505066094", wantOK: true},
		{name: "check digit X", ean: "9780804429573", want: "080442957X", wantOK: true},
		{name: "hobbit", ean: "9780261103344", want: "0261103342", wantOK: true},
		{name: "too short", ean: "12345", wantOK: false},
		{name: "too long", ean: "97825050660991", wantOK: false},
		{name: "non digit", ean: "97825050660ab", wantOK: false},
		{name: "empty", ean: "", wantOK: false},
		{name: "hyphenated", ean: "978-2505066099", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ConvertEANToISBN(tt.ean)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			if ok {
				assert.Len(t, got, 10)
				assert.True(t, ValidISBN10(got), "converted ISBN must carry a valid check character")
			}
		})
	}
}

func TestConvertISBNToEAN(t *testing.T) {
	ean, ok := ConvertISBNToEAN("0261103342")
	assert.True(t, ok)
	assert.Equal(t, "9780261103344", ean)
	assert.True(t, ValidEAN13(ean))

	ean, ok = ConvertISBNToEAN("080442957X")
	assert.True(t, ok)
	assert.Equal(t, "9780804429573", ean)

	_, ok = ConvertISBNToEAN("0261103341")
	assert.False(t, ok)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"978-2-505-06609-9", "9782505066099"},
		{" 2 505 06609 4 ", "2505066094"},
		{"0-8044-2957-x", "080442957X"},
		{"ISBN 080442957X", "080442957X"},
		{"abc", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestValidISBN10(t *testing.T) {
	assert.True(t, ValidISBN10("2505066094"))
	assert.True(t, ValidISBN10("080442957X"))
	assert.True(t, ValidISBN10("080442957x"))
	assert.False(t, ValidISBN10("2505066095"))
	assert.False(t, ValidISBN10("25050660X4"))
	assert.False(t, ValidISBN10("250506609"))
}

func TestValidEAN13(t *testing.T) {
	assert.True(t, ValidEAN13("9780261103344"))
	assert.True(t, ValidEAN13("9782505066095"))
	assert.False(t, ValidEAN13("9782505066099"))
	assert.False(t, ValidEAN13("97802611033a4"))
}

func TestConvertRoundTrip(t *testing.T) {
	// Every nine digit core survives ISBN -> EAN -> ISBN.
	cores := []string{"000000000", "123456789", "250506609", "080442957", "999999999"}
	for _, core := range cores {
		isbn10 := core + checkChar10(core)
		ean, ok := ConvertISBNToEAN(isbn10)
		assert.True(t, ok, core)
		back, ok := ConvertEANToISBN(ean)
		assert.True(t, ok, core)
		assert.Equal(t, isbn10, back)
	}
}
