package manifest

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash computes the deterministic identity of a manifest as a sha256 hex
// string. Two manifests built from identical inputs hash identically; any
// change to an entry's name, category, paths or quality policy produces a
// different hash.
//
// Every field is length-prefixed so adjacent fields cannot be confused.
func Hash(assets []Asset) string {
	hasher := sha256.New()

	writeField := func(data []byte) {
		length := uint64(len(data))
		hasher.Write([]byte{
			byte(length >> 56),
			byte(length >> 48),
			byte(length >> 40),
			byte(length >> 32),
			byte(length >> 24),
			byte(length >> 16),
			byte(length >> 8),
			byte(length),
		})
		hasher.Write(data)
	}

	for _, a := range assets {
		writeField([]byte(a.Category))
		writeField([]byte(a.Name))
		writeField([]byte(a.SourceDDS))
		writeField([]byte(a.DestPNG))
		writeField([]byte(a.DestAVIF))
		if a.Lossless {
			writeField([]byte{1})
		} else {
			writeField([]byte{0})
		}
	}

	return hex.EncodeToString(hasher.Sum(nil))
}
