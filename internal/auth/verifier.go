package auth

import "golang.org/x/crypto/bcrypt"

// CredentialVerifier abstracts the password hashing scheme, so tests can
// substitute a cheap implementation.
type CredentialVerifier interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// BcryptVerifier implements CredentialVerifier with bcrypt.
type BcryptVerifier struct {
	Cost int
}

func (v BcryptVerifier) Hash(password string) (string, error) {
	cost := v.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (v BcryptVerifier) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

var _ CredentialVerifier = BcryptVerifier{}
