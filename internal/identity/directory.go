// Package identity resolves who is calling: a signed-in user or an anonymous
// guest holding a browser token.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/fjod/food_cart/internal/domain"
	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

type Directory interface {
	Lookup(ctx context.Context, userID string) (*domain.User, error)
}

// Caller is the resolved identity of a request. User is nil for guests.
type Caller struct {
	OwnerKey string
	User     *domain.User
}

func (c Caller) IsGuest() bool {
	return c.User == nil
}

func UserOwnerKey(userID string) string {
	return "user:" + userID
}

func GuestOwnerKey(token string) string {
	return "guest:" + token
}

func NewGuestToken() string {
	return uuid.NewString()
}

// ValidGuestToken reports whether token looks like one NewGuestToken issued.
func ValidGuestToken(token string) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}
	_, err := uuid.Parse(token)
	return err == nil
}
