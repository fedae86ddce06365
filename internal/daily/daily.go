package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// Daily challenge rounds are always played on this tier and category.
const (
	Difficulty = "medium"
	Category   = "random"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns a deterministic puzzle seed for a date using HMAC(salt, YYYY-MM-DD).
// Every player sees the same words and grid on the same day.
func Seed(date time.Time, salt string) uint64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes are plenty of entropy for a PRNG seed
	return binary.BigEndian.Uint64(sum[:8])
}
