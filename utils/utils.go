package utils

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// ContainsString returns true iff the provided string slice hay contains string
// needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

// RandomAlphabetString returns a random lower case string of the given length.
func RandomAlphabetString(length int) string {
	res := make([]byte, length)
	for i := range res {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken, at
			// which point there is nothing sensible to continue with.
			panic(err)
		}
		res[i] = alphabet[idx.Int64()]
	}
	return string(res)
}

// RandomToken returns an opaque url-safe random string with the given number
// of bytes of entropy. Used for admin session tokens.
func RandomToken(numBytes int) string {
	buf := make([]byte, numBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
