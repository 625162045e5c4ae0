// Package keygen generates run-scoped credentials.
//
// The database password is generated once per deployment run and threaded
// unmodified into both the Kubernetes secret and the application's injected
// connection parameters. Any divergence between the two would leave the
// application unable to authenticate.
package keygen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// passwordAlphabet deliberately excludes characters that need escaping in
// connection strings and YAML (quotes, backslash, colon, @).
const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Password generates a random password of the given length using crypto/rand.
// Lengths below 16 are rejected.
func Password(length int) (string, error) {
	if length < 16 {
		return "", fmt.Errorf("password length %d is below the 16 character minimum", length)
	}

	buf := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}

	return string(buf), nil
}
