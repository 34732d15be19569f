package domain

import (
	"strconv"
	"strings"
)

// Well-known field names of a stored session. They match the keys the
// browser client historically kept in local storage.
const (
	SessionKeyAccessToken  = "accessToken"
	SessionKeyRefreshToken = "refreshToken"
	SessionKeyUserID       = "userId"
	SessionKeyDisplayName  = "username"
	SessionKeyEmail        = "email"
)

// SessionKeys lists every field of a stored session.
var SessionKeys = []string{
	SessionKeyAccessToken,
	SessionKeyRefreshToken,
	SessionKeyUserID,
	SessionKeyDisplayName,
	SessionKeyEmail,
}

// Session is the authenticated identity context issued by the backend.
// It exists in full or not at all.
type Session struct {
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
	UserID       int64  `json:"user_id"`
	DisplayName  string `json:"username"`
	Email        string `json:"email"`
}

// Validate returns ErrInvalidSession unless every field is present.
func (s Session) Validate() error {
	if strings.TrimSpace(s.AccessToken) == "" ||
		strings.TrimSpace(s.RefreshToken) == "" ||
		s.UserID <= 0 ||
		strings.TrimSpace(s.DisplayName) == "" ||
		strings.TrimSpace(s.Email) == "" {
		return ErrInvalidSession
	}
	return nil
}

// Fields flattens the session into its well-known keys.
func (s Session) Fields() map[string]string {
	return map[string]string{
		SessionKeyAccessToken:  s.AccessToken,
		SessionKeyRefreshToken: s.RefreshToken,
		SessionKeyUserID:       strconv.FormatInt(s.UserID, 10),
		SessionKeyDisplayName:  s.DisplayName,
		SessionKeyEmail:        s.Email,
	}
}

// SessionFromFields rebuilds a session from stored fields. Missing or
// unparsable fields yield ErrInvalidSession; callers treat that as "absent".
func SessionFromFields(fields map[string]string) (Session, error) {
	if len(fields) == 0 {
		return Session{}, ErrInvalidSession
	}

	userID, err := strconv.ParseInt(strings.TrimSpace(fields[SessionKeyUserID]), 10, 64)
	if err != nil {
		return Session{}, ErrInvalidSession
	}

	s := Session{
		AccessToken:  fields[SessionKeyAccessToken],
		RefreshToken: fields[SessionKeyRefreshToken],
		UserID:       userID,
		DisplayName:  fields[SessionKeyDisplayName],
		Email:        fields[SessionKeyEmail],
	}
	if err := s.Validate(); err != nil {
		return Session{}, err
	}
	return s, nil
}
