// Package users reads the account behind the current session.
package users

import (
	"context"

	"github.com/jrsteele09/go-journal-client/apiclient"
)

const MePath = "/user/me"

type User struct {
	ID       string `json:"id,omitempty"`       // Backend identifier
	Email    string `json:"email,omitempty"`    // Account email
	Username string `json:"username,omitempty"` // Username; also the owner segment of entry paths
}

type Service struct {
	api *apiclient.Client
}

func NewService(api *apiclient.Client) *Service {
	return &Service{api: api}
}

// Me returns the user the stored credential belongs to.
func (s *Service) Me(ctx context.Context) (*User, error) {
	var u User
	if err := s.api.Get(ctx, MePath, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
