package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"secretsanta/internal/domain"
)

const accessTokenBytes = 32

// DefaultBcryptCost is the cost used for stored access token hashes.
const DefaultBcryptCost = bcrypt.DefaultCost

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns an AccessTokenHasher that stores bcrypt hashes of the SHA256 of each
// participant access token.
func NewBcryptHasher(cost int) domain.AccessTokenHasher {
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Generate() (string, error) {
	b := make([]byte, accessTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (h *bcryptHasher) Hash(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(prehash(token), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash access token: %w", err)
	}
	return string(hash), nil
}

func (h *bcryptHasher) Compare(hash, token string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(token))
}

// prehash keeps the bcrypt input under its 72 byte limit.
func prehash(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return []byte(hex.EncodeToString(sum[:]))
}
