// Package fingerprint builds deterministic content keys for match data
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// Generate creates a deterministic fingerprint for data.
// The fingerprint is a SHA256 hash of the canonicalized JSON.
func Generate(data map[string]any) string {
	hash := sha256.Sum256([]byte(Canonicalize(data)))
	return hex.EncodeToString(hash[:])
}

// Canonicalize returns a deterministic string representation of data by
// sorting map keys and recursing into nested structures
func Canonicalize(data any) string {
	var b strings.Builder
	canonicalize(&b, data)
	return b.String()
}

func canonicalize(b *strings.Builder, data any) {
	switch v := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			keyJSON, _ := json.Marshal(k)
			b.Write(keyJSON)
			b.WriteByte(':')
			canonicalize(b, v[k])
		}
		b.WriteByte('}')
	case []any:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			canonicalize(b, item)
		}
		b.WriteByte(']')
	default:
		// primitives use their JSON encoding
		raw, _ := json.Marshal(v)
		b.Write(raw)
	}
}

// Equal compares two fingerprints
func Equal(a, b string) bool {
	return a == b
}
