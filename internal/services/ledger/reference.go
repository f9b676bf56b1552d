package ledger

import (
	"fmt"
	"io"
	"time"
)

const (
	referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referenceSuffix   = 6
	// largest multiple of len(referenceAlphabet) that fits a byte
	referenceCutoff = 252
)

// GenerateReference builds TX-{epochMillis}-{6 uppercase alphanumerics}.
// It has no side effects; uniqueness is enforced by the caller's store.
func GenerateReference(now time.Time, rnd io.Reader) (string, error) {
	suffix := make([]byte, 0, referenceSuffix)
	buf := make([]byte, referenceSuffix*2)
	for len(suffix) < referenceSuffix {
		if _, err := io.ReadFull(rnd, buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= referenceCutoff {
				continue
			}
			suffix = append(suffix, referenceAlphabet[int(b)%len(referenceAlphabet)])
			if len(suffix) == referenceSuffix {
				break
			}
		}
	}
	return fmt.Sprintf("TX-%d-%s", now.UnixMilli(), suffix), nil
}
