// file: service/code.go

package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CodeLength is the number of decimal digits of a verification code.
const CodeLength = 6

// CodeGenerator produces a fresh verification code.
type CodeGenerator func() string

// GenerateCode returns a uniformly random CodeLength-digit code, zero padded.
// A failing randomness source is fatal.
func GenerateCode() string {
	return generateCode(CodeLength)
}

func generateCode(length int) string {
	if length < 1 || length > 18 {
		panic(fmt.Sprintf("cannot generate code with %d digits", length))
	}
	span := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		panic(fmt.Sprintf("crypto/rand is unavailable: %v", err))
	}
	return fmt.Sprintf("%0*d", length, n.Int64())
}
