// Package fingerprint derives the stable identity of a secret payload.
package fingerprint

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/aleister1102/leakwatch/internal/models"
)

// Algorithm selects the digest used for a family
type Algorithm string

const (
	SHA256 Algorithm = "SHA-256"
	SHA512 Algorithm = "SHA-512"
)

func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	}
	return nil, common.NewValidationError("algorithm", string(a), "unsupported fingerprint algorithm")
}

type canonicalForm struct {
	Kind   models.PayloadKind `json:"kind"`
	Fields map[string]string  `json:"fields"`
}

// Canonical serializes a payload with sorted keys. Location never enters it.
func Canonical(p models.Payload) ([]byte, error) {
	if p == nil {
		return nil, common.NewValidationError("payload", nil, "payload is required")
	}
	// encoding/json writes map keys in sorted order
	return json.Marshal(canonicalForm{Kind: p.Kind(), Fields: p.Fields()})
}

// Compute returns the hex digest of the canonical payload
func Compute(p models.Payload, algo Algorithm) (string, error) {
	data, err := Canonical(p)
	if err != nil {
		return "", err
	}
	h, err := algo.newHash()
	if err != nil {
		return "", err
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MustCompute is Compute for callers holding a known-good algorithm
func MustCompute(p models.Payload, algo Algorithm) string {
	fp, err := Compute(p, algo)
	if err != nil {
		panic(fmt.Sprintf("fingerprint: %v", err))
	}
	return fp
}
