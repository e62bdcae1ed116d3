package ports

import "context"

// DefaultTokenKey names the redis key or mongo document that holds the token
// when no key is configured.
const DefaultTokenKey = "feedbackctl:session"

// TokenStore persists the opaque credential token under a fixed key.
// Load returns an empty string and a nil error when no token is stored.
// The Session Store is the only writer; the request gateway only reads.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
