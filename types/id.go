package types

import (
	"math/rand"
	"strconv"
	"time"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewReportID generates a unique report id: millisecond timestamp plus a
// short random base36 suffix. Sorting ids lexically roughly follows
// creation order, which makes the flat-file document easy to eyeball.
func NewReportID() string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = base36Alphabet[rand.Intn(len(base36Alphabet))]
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + string(suffix)
}
