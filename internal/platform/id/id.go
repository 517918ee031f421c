// Package id generates compact, URL-safe unique identifiers.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a random identifier encoded as 26 lowercase base32 characters.
//
// The underlying bytes are a version 4 UUID, so identifiers keep UUID
// uniqueness guarantees while staying compact and unambiguous in URLs.
func NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(value[:])), nil
}
