package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// keyVersion is hashed into every key. Bump it when the cached layout
// document or stats change shape so old entries stop matching.
const keyVersion = 1

// hashKey returns "<prefix>:<hex sha256>" over keyVersion and parts, each
// JSON-encoded in turn. Layout keys pass the diagram fingerprint hash and
// the layout options; render keys pass the laid-out document hash and the
// render options.
func hashKey(prefix string, parts ...any) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(keyVersion)
	for _, p := range parts {
		_ = enc.Encode(p)
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data. The pipeline hashes diagram
// fingerprints and laid-out documents with it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
