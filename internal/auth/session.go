package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/mayu-0506/studytime-tracker-sub000/internal"
)

// SessionCookieName is the cookie carrying the serialized session. Every
// auth-related cookie uses the "st_" prefix so the recovery flow can clear
// them as a group.
const (
	SessionCookieName = "st_session"
	AuthCookiePrefix  = "st_"
)

// SessionPayload is the client-visible session object serialized into the
// session cookie. Metadata mirrors the auth layer's user metadata and is the
// part the size guard sanitizes.
type SessionPayload struct {
	UserID   string            `json:"uid"`
	Token    string            `json:"tok"`
	Name     string            `json:"name,omitempty"`
	IssuedAt time.Time         `json:"iat"`
	Metadata map[string]string `json:"meta,omitempty"`
}

// EncodeSession serializes a session payload for cookie storage, applying the
// size guard pipeline first: per-field metadata sanitize, then whole-cookie
// shrink and truncation thresholds (see guard.go).
func EncodeSession(p *SessionPayload, logger internal.Logger) (string, error) {
	p.Metadata = SanitizeMetadata(p.Metadata, logger)

	encoded, err := marshalSession(p)
	if err != nil {
		return "", err
	}

	if len(encoded) > CookieHardLimit {
		// Identity only: everything else is recoverable from the server.
		logger.Errorf("session cookie %dB exceeds hard limit %dB, truncating to identity", len(encoded), CookieHardLimit)
		p = &SessionPayload{UserID: p.UserID, Token: p.Token, IssuedAt: p.IssuedAt}
		return marshalSession(p)
	}
	if len(encoded) > CookieShrinkLimit {
		logger.Warnf("session cookie %dB exceeds shrink limit %dB, dropping metadata", len(encoded), CookieShrinkLimit)
		p.Metadata = nil
		return marshalSession(p)
	}
	if len(encoded) > CookieSoftLimit {
		logger.Warnf("session cookie is %dB, above soft limit %dB", len(encoded), CookieSoftLimit)
	}
	return encoded, nil
}

func marshalSession(p *SessionPayload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func DecodeSession(value string) (*SessionPayload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, err
	}
	var p SessionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	if p.Token == "" {
		return nil, errors.New("session payload has no token")
	}
	return &p, nil
}
