package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// CodeIssuer produces six digit one-time codes.
type CodeIssuer interface {
	NewCode() (string, error)
}

// OTPIssuer draws codes uniformly from [100000, 999999] using crypto/rand.
type OTPIssuer struct{}

// NewOTPIssuer creates a new OTP issuer.
func NewOTPIssuer() OTPIssuer {
	return OTPIssuer{}
}

// NewCode returns a fresh code as its decimal string.
func (OTPIssuer) NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}
