package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocChecksum(t *testing.T) {
	base := DocChecksum("rm", "remove files")

	assert.Equal(t, base, DocChecksum("rm", "remove files"), "checksum must be stable")
	assert.NotEqual(t, base, DocChecksum("rm", "remove files."), "doc change must change checksum")
	assert.NotEqual(t, base, DocChecksum("mv", "remove files"), "command change must change checksum")

	// The separator keeps (command, doc) boundaries unambiguous.
	assert.NotEqual(t, DocChecksum("ab", "c"), DocChecksum("a", "bc"))
}
