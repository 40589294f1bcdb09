package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	InviteCodeLength = 8
	inviteAlphabet   = "abcdefghjkmnpqrstuvwxyz23456789"
)

// GenerateInviteCode returns a random lowercase code for sharing a group.
// Ambiguous glyphs (0/o, 1/l/i) are excluded.
func GenerateInviteCode() (string, error) {
	return randomString(InviteCodeLength, inviteAlphabet)
}

func randomString(length int, alphabet string) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	limit := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}
