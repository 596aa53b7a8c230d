package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes with bcrypt; the salt is embedded in the hash so two
// calls with the same password produce different output.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword returns nil when password matches hash.
func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
