// Package snapshot persists write-once, replayable run records keyed by the
// content hash of their full input.
package snapshot

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/yourusername/theory-engine/internal/models"
)

// CanonicalJSON serializes a value deterministically. encoding/json already
// sorts map keys and walks struct fields in declaration order, which is
// enough for stable hashing.
func CanonicalJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize canonical input: %w", err)
	}
	return data, nil
}

// ContentHash hashes a run kind plus its canonical input. Equal inputs always
// produce equal hashes, so re-running an identical request hits the same
// snapshot.
func ContentHash(kind models.RunKind, input any) (string, error) {
	data, err := CanonicalJSON(input)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SeedFromHash derives the deterministic random seed for a run from its
// content hash, so Monte Carlo resamples replay exactly.
func SeedFromHash(hash string) int64 {
	raw, err := hex.DecodeString(hash)
	if err != nil || len(raw) < 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(raw[:8]) &^ (1 << 63))
}
