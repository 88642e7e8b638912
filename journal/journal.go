// Package journal manages the current user's journal entries.
package journal

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-journal-client/apiclient"
	"github.com/jrsteele09/go-journal-client/internal/errors"
)

const (
	EntriesPath   = "/journal"
	DeleteAllPath = "/journal/delete-all"
)

type Service struct {
	api *apiclient.Client
}

func NewService(api *apiclient.Client) *Service {
	return &Service{api: api}
}

// List returns every entry owned by the session's user.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	entries := []Entry{}
	if err := s.api.Get(ctx, EntriesPath, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Service) Get(ctx context.Context, id EntryID) (*Entry, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var e Entry
	if err := s.api.Get(ctx, entryPath(id), nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Service) Create(ctx context.Context, d Draft) (*Entry, error) {
	d, err := d.normalised()
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := s.api.Post(ctx, EntriesPath, s.api.NewRequest(nil, d), &e); err != nil {
		return nil, err
	}
	log.Debug().Str("id", e.ID.String()).Msg("entry created")
	return &e, nil
}

// Update replaces an entry's fields through the id-only route used by the entry form.
func (s *Service) Update(ctx context.Context, id EntryID, d Draft) error {
	if err := checkID(id); err != nil {
		return err
	}
	d, err := d.normalised()
	if err != nil {
		return err
	}
	return s.api.Put(ctx, entryPath(id), s.api.NewRequest(nil, d), nil)
}

// UpdateOwned replaces an entry's fields through the owner-scoped route used for inline edits.
func (s *Service) UpdateOwned(ctx context.Context, username string, id EntryID, d Draft) error {
	if err := checkID(id); err != nil {
		return err
	}
	if strings.TrimSpace(username) == "" {
		return errors.ErrNotLoggedIn
	}
	d, err := d.normalised()
	if err != nil {
		return err
	}
	return s.api.Put(ctx, ownedEntryPath(username, id), s.api.NewRequest(nil, d), nil)
}

func (s *Service) Delete(ctx context.Context, username string, id EntryID) error {
	if err := checkID(id); err != nil {
		return err
	}
	if strings.TrimSpace(username) == "" {
		return errors.ErrNotLoggedIn
	}
	return s.api.Delete(ctx, ownedEntryPath(username, id), nil, nil)
}

// DeleteAll removes every entry owned by the session's user.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.api.Delete(ctx, DeleteAllPath, nil, nil)
}

func checkID(id EntryID) error {
	if strings.TrimSpace(string(id)) == "" {
		return errors.ErrInvalidEntryID
	}
	return nil
}

func entryPath(id EntryID) string {
	return EntriesPath + "/" + url.PathEscape(string(id))
}

func ownedEntryPath(username string, id EntryID) string {
	return EntriesPath + "/" + url.PathEscape(username) + "/" + url.PathEscape(string(id))
}
