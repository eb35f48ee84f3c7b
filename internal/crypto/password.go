package crypto

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Character classes used by GeneratePassword.
const (
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "!#$%&()*+,-./:;<=>?@[]^_{}~"
)

// Default quotas for generated master passwords.
const (
	DefaultLower   = 6
	DefaultUpper   = 8
	DefaultDigits  = 10
	DefaultSymbols = 6
)

// GeneratePassword builds a random password containing exactly the given
// number of characters from each class, shuffled. The result length is the
// sum of the quotas.
func GeneratePassword(lower, upper, digits, symbols int) (*SecretBuffer, error) {
	out := make([]byte, 0, lower+upper+digits+symbols)

	classes := []struct {
		chars string
		count int
	}{
		{lowerChars, lower},
		{upperChars, upper},
		{digitChars, digits},
		{symbolChars, symbols},
	}
	for _, c := range classes {
		for i := 0; i < c.count; i++ {
			idx, err := randomInt(len(c.chars))
			if err != nil {
				ClearBytes(out)
				return nil, err
			}
			out = append(out, c.chars[idx])
		}
	}

	// Fisher-Yates with crypto/rand
	for i := len(out) - 1; i > 0; i-- {
		j, err := randomInt(i + 1)
		if err != nil {
			ClearBytes(out)
			return nil, err
		}
		out[i], out[j] = out[j], out[i]
	}

	return NewSecretBuffer(out), nil
}

// GenerateDefaultPassword generates a password with the default quotas.
func GenerateDefaultPassword() (*SecretBuffer, error) {
	return GeneratePassword(DefaultLower, DefaultUpper, DefaultDigits, DefaultSymbols)
}

func randomInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random index: %w", err)
	}
	return int(v.Int64()), nil
}
