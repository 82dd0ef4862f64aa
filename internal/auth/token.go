package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Claims describes the backend-issued access token payload the console
// cares about: the subject identifies the ticket owner.
type Claims struct {
	SubjectID string `json:"sub"`
	Name      string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the resolved user context for the session.
type Identity struct {
	UserID    string
	Name      string
	ExpiresAt time.Time
}

// Expired reports whether the token's expiry has passed. Tokens without
// an exp claim never expire from the client's point of view.
func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// InspectToken extracts identity claims from an access token without
// verifying the signature. The backend is the authority on token
// validity; the console only needs the subject for the grouped endpoint
// and the expiry for an early warning before calls start failing.
func InspectToken(tokenStr string) (*Identity, error) {
	if tokenStr == "" {
		return nil, errors.New("empty token")
	}

	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil, err
	}

	subject := claims.SubjectID
	if subject == "" {
		subject = claims.RegisteredClaims.Subject
	}
	if subject == "" {
		return nil, errors.New("token has no subject claim")
	}

	identity := &Identity{UserID: subject, Name: claims.Name}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

// ResolveUserID prefers an explicit configuration override, falling back
// to the token subject.
func ResolveUserID(configured, tokenStr string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	identity, err := InspectToken(tokenStr)
	if err != nil {
		return "", err
	}
	return identity.UserID, nil
}
