// Package random produces unguessable strings for links sent to customers.
package random

import (
	crand "crypto/rand"
	"math/big"
)

const charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var charsetLen = big.NewInt(int64(len(charset)))

// StringSecure returns length characters drawn uniformly from [0-9A-Za-z]
// with crypto/rand.
func StringSecure(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		num, err := crand.Int(crand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		b[i] = charset[num.Int64()]
	}
	return string(b), nil
}
