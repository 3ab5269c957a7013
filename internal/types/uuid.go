package types

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID prefixes for all entities. IDs are lexicographically sortable ULIDs so
// creation order survives in the default sort.
const (
	UUIDPrefixLetter       = "letter"
	UUIDPrefixSubscription = "sub"
	UUIDPrefixAuditLog     = "audit"
	UUIDPrefixCommission   = "comm"
	UUIDPrefixUser         = "user"
	UUIDPrefixRequest      = "req"
	UUIDPrefixEvent        = "evt"
)

// GenerateUUID returns a ULID.
func GenerateUUID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String()
}

// GenerateUUIDWithPrefix returns a prefixed ULID, e.g. "letter_01J...".
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}
