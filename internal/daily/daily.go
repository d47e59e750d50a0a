package daily

import (
	"encoding/binary"
	"time"

	"golang.org/x/crypto/blake2b"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns a deterministic layout seed for a date using a keyed
// BLAKE2b-256(salt, YYYY-MM-DD). Every player gets the same puzzle that day.
func Seed(date time.Time, salt string) int64 {
	h, err := blake2b.New256(key(salt))
	if err != nil {
		// key() never exceeds blake2b.Size
		panic(err)
	}
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// take first 8 bytes; clear the sign bit so the seed reads well in logs
	return int64(binary.BigEndian.Uint64(sum[:8]) &^ (1 << 63))
}

// key fits an arbitrary salt into a BLAKE2b key (at most 64 bytes).
func key(salt string) []byte {
	if len(salt) <= blake2b.Size {
		return []byte(salt)
	}
	sum := blake2b.Sum512([]byte(salt))
	return sum[:]
}
