package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters, for logs and report headers.
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// RulebookHash fingerprints the rule set a result was computed under.
type RulebookHash Hash

func NewRulebookHash(data []byte) RulebookHash { return RulebookHash(NewHash(data)) }

func (h RulebookHash) String() string { return Hash(h).String() }
func (h RulebookHash) Short() string  { return Hash(h).Short() }
