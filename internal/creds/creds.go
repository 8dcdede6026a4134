// Package creds persists per-user credential tokens.
package creds

import "context"

// Store saves and loads the credential token of a user. An absent token is
// not an error: Load returns ok=false.
type Store interface {
	Save(ctx context.Context, userKey int64, token string) error
	Load(ctx context.Context, userKey int64) (token string, ok bool, err error)
	Clear(ctx context.Context, userKey int64) error
	Close() error
}
