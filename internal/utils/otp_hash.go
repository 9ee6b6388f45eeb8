package utils

import "golang.org/x/crypto/bcrypt"

// HashOTP hashes a verification code before it is held for comparison, so
// the plain code never sits in memory longer than the send step.
func HashOTP(code string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckOTPHash compares a submitted code against the stored hash
func CheckOTPHash(code, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code))
	return err == nil
}
