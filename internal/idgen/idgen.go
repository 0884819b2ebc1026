// Package idgen generates short, URL-safe record IDs backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Kind selects the ID prefix for a record type.
type Kind string

const (
	Token    Kind = "tok-"
	Ad       Kind = "ad-"
	AdGroup  Kind = "adg-"
	Campaign Kind = "cmp-"
	Customer Kind = "cus-"
)

// Alphabet omits look-alike characters so IDs can be read aloud to support.
const Alphabet = "23456789abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"

// Length is the number of random characters after the prefix.
const Length = 10

// New returns a fresh ID for kind.
func New(kind Kind) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return string(kind) + id, nil
}

// Assign sets *id to a fresh ID for kind unless it is already set.
func Assign(id *string, kind Kind) error {
	if *id != "" {
		return nil
	}
	v, err := New(kind)
	if err != nil {
		return err
	}
	*id = v
	return nil
}
