// Package identity computes the identifiers that give journal records a
// stable identity across imports: content hashes, UUIDs, timestamp-derived
// zettelkasten ids, and ULID run ids for import batches.
package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// HashOf returns the hex-encoded content hash of text.
// Identical text always yields an identical hash; the empty string hashes
// to the digest of zero bytes rather than failing.
func HashOf(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// NewUUID generates an opaque identifier for records lacking a natural
// external id. Dashes are stripped and the result is uppercased to match
// the format of ids carried by common journal exports.
func NewUUID() string {
	s := uuid.NewString()
	s = strings.ReplaceAll(s, "-", "")
	return strings.ToUpper(s)
}

// zkidFormat renders a timestamp at second granularity: YYYYMMDDHHMMSS.
const zkidFormat = "20060102150405"

// ZettelkastenID derives a sortable integer id from a timestamp at second
// granularity. Records created within the same second collide; the storage
// layer's identity reconciliation resolves those, not this function.
func ZettelkastenID(t time.Time) int64 {
	id, _ := strconv.ParseInt(t.Format(zkidFormat), 10, 64)
	return id
}

// ZettelkastenIDMinute is ZettelkastenID truncated to minute granularity.
func ZettelkastenIDMinute(t time.Time) int64 {
	id, _ := strconv.ParseInt(t.Format("200601021504"), 10, 64)
	return id
}

// NewRunID generates a ULID tagging one import batch. ULIDs sort by time,
// so run ids order import history chronologically for free.
func NewRunID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
