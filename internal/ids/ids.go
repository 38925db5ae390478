// Package ids generates and checks the 24-character hex identifiers used for
// users, authors and books.
package ids

import (
	"encoding/binary"
	"encoding/hex"
	"regexp"
	"time"

	"github.com/google/uuid"
)

const Length = 24

var pattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// New returns 4 bytes of big-endian unix seconds followed by 8 random bytes,
// hex encoded. Ids created in later seconds sort after earlier ones.
func New() string {
	return NewAt(time.Now())
}

func NewAt(t time.Time) string {
	var b [12]byte
	binary.BigEndian.PutUint32(b[:4], uint32(t.Unix()))

	r := uuid.New()
	copy(b[4:], r[:8])

	return hex.EncodeToString(b[:])
}

func Valid(id string) bool {
	return pattern.MatchString(id)
}
