package security

import (
	"golang.org/x/crypto/bcrypt"
)

const bcryptHashLen = 60

// IsHashed reports whether s is already an encoded bcrypt hash.
func IsHashed(s string) bool {
	if len(s) != bcryptHashLen {
		return false
	}
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// HashPassword hashes a plain password. A value that is already a bcrypt
// hash is returned unchanged so it is never hashed twice.
func HashPassword(password string) (string, error) {
	if IsHashed(password) {
		return password, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
