package domain

import (
	"strings"
	"time"
)

// User is a guest known through the messaging integration.
type User struct {
	ID         int64
	ExternalID string  // messaging-platform identity, unique
	Username   *string // display name, optional
	CreatedAt  time.Time
	LastActive time.Time
}

func NewUser(externalID string, username *string) (User, error) {
	u := User{ExternalID: strings.TrimSpace(externalID)}
	if username != nil {
		n := *username
		u.Username = &n
	}
	return u, u.Validate()
}

func (u User) Validate() error {
	if strings.TrimSpace(u.ExternalID) == "" {
		return invalid("user external id is required")
	}
	return nil
}
