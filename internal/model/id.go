package model

import "github.com/oklog/ulid/v2"

// NewID generates a ULID for entity identifiers.
// ULIDs sort lexicographically by creation time, so "ORDER BY id DESC"
// lists newest entities first.
func NewID() string {
	return ulid.Make().String()
}
