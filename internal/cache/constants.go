package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/goccy/go-json"
)

// key names definition
const (
	ListingVersionKey = "movies:version"   // counter bumped on every catalog write
	ListingKey        = "movies:v%d:%s:%s" // key of a cached listing, version, kind and query fingerprint
)

func MakeListingKey(version int64, kind, fingerprint string) string {
	return fmt.Sprintf(ListingKey, version, kind, fingerprint)
}

// Fingerprint hashes the JSON encoding of a query value. Pointer fields
// are encoded by value, so equal queries share a fingerprint.
func Fingerprint(query any) (string, error) {
	data, err := json.Marshal(query)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}
