package service

import "github.com/batala/site-server-go/internal/util"

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// Argon2Hasher is the production hasher (argon2id, PHC encoded).
type Argon2Hasher struct{}

func (Argon2Hasher) Hash(password string) (string, error) {
	return util.HashPassword(password)
}

func (Argon2Hasher) Verify(hash, password string) bool {
	return util.CheckPassword(password, hash)
}
