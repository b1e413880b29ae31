package verification

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// GenerateCode returns a uniformly random 6-digit zero-padded code together
// with its expiry instant.
func GenerateCode(ttl time.Duration) (string, time.Time, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", time.Time{}, err
	}
	return fmt.Sprintf("%06d", n.Int64()), time.Now().Add(ttl), nil
}

// HashCode derives the at-rest digest of a code: lowercase hex
// SHA-256(code + salt). The raw code is never stored; verification recomputes
// this digest from caller input and compares against the stored value.
func HashCode(code, salt string) string {
	sum := sha256.Sum256([]byte(code + salt))
	return hex.EncodeToString(sum[:])
}
