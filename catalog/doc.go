// Package catalog holds the comic collection: entries, their YAML backed
// store, grouping by series with missing-volume tracking, and the background
// job that fills in placeholder covers.
package catalog
