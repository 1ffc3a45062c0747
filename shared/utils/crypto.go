package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	Alphanumeric            = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	SubscriptionTokenLength = 25
)

// GenerateRandomString generates a cryptographically secure random string
// using the provided charset and length
func GenerateRandomString(length int, charset string) string {
	b := make([]byte, length)
	max := big.NewInt(int64(len(charset)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(fmt.Sprintf("failed to generate random string: %v", err))
		}
		b[i] = charset[n.Int64()]
	}
	return string(b)
}

// GenerateSubscriptionToken returns a 25 character token drawn uniformly from
// [A-Za-z0-9]. Uniqueness is not checked; the token column's primary key is
// the only guard.
func GenerateSubscriptionToken() string {
	return GenerateRandomString(SubscriptionTokenLength, Alphanumeric)
}
