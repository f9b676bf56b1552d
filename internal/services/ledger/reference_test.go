package ledger

import (
	"bytes"
	"crypto/rand"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referencePattern = regexp.MustCompile(`^TX-\d+-[A-Z0-9]{6}$`)

func TestGenerateReference_Format(t *testing.T) {
	now := time.UnixMilli(1718000000123)

	ref, err := GenerateReference(now, rand.Reader)
	require.NoError(t, err)
	assert.Regexp(t, referencePattern, ref)
	assert.Contains(t, ref, "TX-1718000000123-")
}

func TestGenerateReference_SkipsBiasedBytes(t *testing.T) {
	// 0xFF is above the cutoff and must be discarded.
	src := bytes.NewReader([]byte{0xFF, 0, 1, 2, 0xFE, 25, 26, 35, 0, 0, 0, 0})

	ref, err := GenerateReference(time.UnixMilli(1), src)
	require.NoError(t, err)
	assert.Equal(t, "TX-1-ABCZ09", ref)
}

func TestGenerateReference_ShortRead(t *testing.T) {
	_, err := GenerateReference(time.Now(), bytes.NewReader([]byte{1, 2}))
	assert.Error(t, err)
}
