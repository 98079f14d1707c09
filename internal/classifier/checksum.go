package classifier

import (
	"crypto/sha256"
	"encoding/binary"
)

// DocChecksum computes the 64-bit checksum binding a classification result to
// the exact documentation text consumed. The command name participates so two
// commands sharing documentation text do not collide.
func DocChecksum(command, doc string) uint64 {
	h := sha256.New()
	h.Write([]byte(command))
	h.Write([]byte{0})
	h.Write([]byte(doc))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}
