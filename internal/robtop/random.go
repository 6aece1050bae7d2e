package robtop

import (
	"crypto/rand"
	"math/big"
)

const (
	alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	digits       = "0123456789"
)

func randomFrom(alphabet string, n int) string {
	out := make([]byte, n)
	limit := big.NewInt(int64(len(alphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand does not fail on supported platforms.
			panic(err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out)
}

// RandomString returns n random alphanumeric characters ("rs" parameter).
func RandomString(n int) string {
	return randomFrom(alphanumeric, n)
}

// RandomDigits returns n random decimal digits.
func RandomDigits(n int) string {
	return randomFrom(digits, n)
}

// NewUDID returns a device identifier in the format the client generates.
func NewUDID() string {
	return "S" + RandomDigits(20)
}
