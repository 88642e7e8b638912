// Package auth acquires and discards the session credential.
package auth

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-journal-client/apiclient"
	"github.com/jrsteele09/go-journal-client/internal/errors"
	"github.com/jrsteele09/go-journal-client/session"
)

const (
	LoginPath          = "/public/login"
	SignUpPath         = "/public/sign-up"
	GoogleCallbackPath = "/auth/google/callback"
)

// Service performs credential login, sign-up and logout against the backend.
type Service struct {
	api   *apiclient.Client
	store session.Store
}

func NewService(api *apiclient.Client) *Service {
	return &Service{api: api, store: api.Store()}
}

// Login exchanges username and password for a credential and stores it.
func (s *Service) Login(ctx context.Context, username, password string) error {
	creds := Credentials{Username: strings.TrimSpace(username), Password: password}
	if err := creds.Validate(); err != nil {
		return err
	}
	var resp TokenResponse
	if err := s.api.Post(ctx, LoginPath, s.api.NewRequest(nil, creds), &resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return errors.ErrTokenNotIssued
	}
	if err := s.store.Set(resp.Token); err != nil {
		return errors.Wrapf(err, "storing credential")
	}
	log.Info().Str("username", creds.Username).Msg("logged in")
	return nil
}

// SignUp registers an account and then logs in with the same credentials.
func (s *Service) SignUp(ctx context.Context, email, username, password string) error {
	reg := Registration{
		Email:    strings.TrimSpace(email),
		Username: strings.TrimSpace(username),
		Password: password,
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	if err := s.api.Post(ctx, SignUpPath, s.api.NewRequest(nil, reg), nil); err != nil {
		return err
	}
	log.Info().Str("username", reg.Username).Msg("account created")
	return s.Login(ctx, reg.Username, reg.Password)
}

// ExchangeGoogleCode trades an authorization code for a credential. The returned token is
// empty when the backend accepted the code without issuing one. Nothing is stored here.
func (s *Service) ExchangeGoogleCode(ctx context.Context, code string) (string, error) {
	var resp TokenResponse
	req := s.api.NewRequest(map[string]string{"code": code}, nil)
	if err := s.api.Get(ctx, GoogleCallbackPath, req, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Logout discards the credential. It never calls the backend and always succeeds in
// leaving the client anonymous unless the store itself fails.
func (s *Service) Logout() error {
	if err := s.store.Clear(); err != nil {
		return errors.Wrapf(err, "clearing credential")
	}
	log.Info().Msg("logged out")
	return nil
}

func (s *Service) State() session.State {
	return session.StateOf(s.store)
}
