// Package server exposes search, cover lookup and the catalog over a JSON
// HTTP API built on chi. Replies are wrapped in a {status, data, error}
// envelope; provider failures map to 502, an exhausted retry budget or a
// closed governor to 503.
package server
