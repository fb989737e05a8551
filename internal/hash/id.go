// Package hash provides the single stable hash function the module uses
// for non-normative diagnostics: fingerprinting an unrecognized error code
// for its log tag. It never participates
// in the wire format itself — the codec's byte layout is always explicit,
// never content-addressed.
package hash

import "github.com/cespare/xxhash/v2"

// Fingerprint returns the xxHash64 of data, used to produce a short,
// stable, human-distinguishable tag for log lines.
func Fingerprint(data string) uint64 {
	return xxhash.Sum64String(data)
}
