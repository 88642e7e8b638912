// Package session holds the bearer credential that marks a user as logged in.
//
// The credential is opaque. Whether a token is stored is the only signal of the session
// state; nothing in this package checks expiry.
package session

// State of the client session.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "AUTHENTICATED"
	default:
		return "ANONYMOUS"
	}
}

// Store persists a single bearer credential.
type Store interface {
	// Get returns the stored credential and whether one is present.
	Get() (string, bool)
	// Set replaces the stored credential.
	Set(token string) error
	// Clear removes the credential. Clearing an empty store is not an error.
	Clear() error
}

// Changed is emitted when the credential changes outside this process.
type Changed struct {
	State State
}

// StateOf derives the session state from the store contents.
func StateOf(s Store) State {
	if _, ok := s.Get(); ok {
		return Authenticated
	}
	return Anonymous
}
