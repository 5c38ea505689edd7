package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong пароль длиннее 72 байт.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// PasswordHasher хеширует пароли пользователей.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(hashedPassword, password string) bool
}

// BcryptHasher хеширует пароли через bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher создает хешер. cost вне допустимых границ bcrypt заменяется на bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash генерирует bcrypt хеш. Пароли длиннее 72 байт bcrypt отвергает.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Matches сравнивает пароль с хешем.
func (h *BcryptHasher) Matches(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
