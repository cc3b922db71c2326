package session

import (
	"context"

	"maplebudget/internal/storage"
)

// tokenStore reads and writes one session's API token in storage.
type tokenStore struct {
	store storage.SessionStore
	id    string
}

func (t *tokenStore) Get(ctx context.Context) (string, bool) {
	s, err := t.store.GetSession(ctx, t.id)
	if err != nil || s.Token == "" {
		return "", false
	}
	return s.Token, true
}

// Set stores token along with its subject, when the token is a JWT.
func (t *tokenStore) Set(ctx context.Context, token string) error {
	claims, _ := InspectToken(token)
	return t.store.SetSessionToken(ctx, t.id, token, claims.Subject)
}

func (t *tokenStore) Clear(ctx context.Context) error {
	return t.store.ClearSessionToken(ctx, t.id)
}
