package domain

import (
	"encoding/json"
	"errors"
)

// SessionKey is the key under which the active session is persisted.
const SessionKey = "cloud-ev-dashboard-auth"

type User struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Valid reports whether the session carries a token.
func (s Session) Valid() bool {
	return s.Token != ""
}

// DecodeSession parses a persisted session. A payload that is not a JSON
// object yields ErrPersistenceCorrupt; a well-formed payload without a token
// decodes to an invalid (but not corrupt) session.
func DecodeSession(raw []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, errors.Join(ErrPersistenceCorrupt, err)
	}
	return s, nil
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Empty reports whether either field is blank.
func (c Credentials) Empty() bool {
	return c.Username == "" || c.Password == ""
}

// AuthPhase is the application-wide authentication state.
type AuthPhase int

const (
	LoggedOut AuthPhase = iota
	Authenticating
	LoggedIn
)

func (p AuthPhase) String() string {
	switch p {
	case LoggedOut:
		return "logged_out"
	case Authenticating:
		return "authenticating"
	case LoggedIn:
		return "logged_in"
	default:
		return "unknown"
	}
}
