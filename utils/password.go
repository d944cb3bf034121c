package utils

import "golang.org/x/crypto/bcrypt"

// PasswordCost matches the salt rounds the existing accounts were hashed with.
const PasswordCost = 10

func HashPassword(raw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(raw), PasswordCost)
	return string(b), err
}

func CheckPassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
