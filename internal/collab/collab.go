// Package collab defines the narrow interfaces through which the
// conversation engine talks to external systems: the auth service, the
// ingredient/tag/recipe catalog, the recipe-create endpoint and the media
// fetcher. Both the HTTP-API backend and the direct-storage backend
// implement these interfaces.
package collab

import (
	"context"
	"errors"

	"github.com/KobaLuck/recipe-bot/internal/browse"
	"github.com/KobaLuck/recipe-bot/internal/recipe"
)

// ErrUpstream marks a collaborator that was unreachable or answered with a
// non-success status. The conversation state does not advance on it.
var ErrUpstream = errors.New("upstream error")

// ValidationError is a collaborator's rejection of a create payload.
// Details is the structured error payload rendered as human-readable lines.
type ValidationError struct {
	Details string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Details
}

// RegisterParams are the fields collected by the registration sub-dialogue.
type RegisterParams struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// Authenticator logs users in and registers new accounts.
type Authenticator interface {
	// Login exchanges credentials for a token.
	Login(ctx context.Context, email, password string) (token string, err error)

	// Register creates an account and logs it in, returning a token.
	Register(ctx context.Context, params RegisterParams) (token string, err error)
}

// Catalog lists ingredients, tags and recipes page by page. Pages are
// normalized at the collaborator boundary; navigation metadata may be
// absent when the backend does not paginate.
type Catalog interface {
	// Ingredients lists ingredients whose name starts with letter.
	Ingredients(ctx context.Context, letter string, page int) (browse.Page, error)

	// Tags lists all tags.
	Tags(ctx context.Context, page int) (browse.Page, error)

	// Recipes lists existing recipes.
	Recipes(ctx context.Context, page int) ([]recipe.Summary, error)

	// Favorites lists the authenticated user's favorite recipes.
	Favorites(ctx context.Context, token string, page int) ([]recipe.Summary, error)
}

// RecipeCreator issues the single create request of a completed draft.
// A rejected payload is reported as a *ValidationError; transport or
// status failures wrap ErrUpstream.
type RecipeCreator interface {
	Create(ctx context.Context, payload recipe.CreatePayload, token string) error
}

// MediaFetcher resolves an opaque photo handle to raw bytes and a MIME
// type. Callers must degrade failures to a placeholder, never propagate.
type MediaFetcher interface {
	FetchBinary(ctx context.Context, handle string) (data []byte, mimeType string, err error)
}
