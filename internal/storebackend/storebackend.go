// Package storebackend is the direct-storage deployment variant of the
// collaborator interfaces: authentication, catalog listing and recipe
// creation straight against the relational store, without going through
// the site API.
package storebackend

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KobaLuck/recipe-bot/internal/argon2id"
	"github.com/KobaLuck/recipe-bot/internal/browse"
	"github.com/KobaLuck/recipe-bot/internal/collab"
	"github.com/KobaLuck/recipe-bot/internal/recipe"
)

const (
	tokenBytes = 32

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Backend serves catalog, auth and create operations from Postgres.
type Backend struct {
	pool     *pgxpool.Pool
	pageSize int
}

var (
	_ collab.Authenticator = (*Backend)(nil)
	_ collab.Catalog       = (*Backend)(nil)
	_ collab.RecipeCreator = (*Backend)(nil)
)

func New(pool *pgxpool.Pool, pageSize int) *Backend {
	return &Backend{pool: pool, pageSize: pageSize}
}

// EnsureSchema applies the schema when the users table is missing.
func (b *Backend) EnsureSchema(ctx context.Context) error {
	var exists bool
	err := b.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'users')`,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking schema: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := b.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

func newToken() (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Reader.Read(raw); err != nil {
		return "", fmt.Errorf("creating token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// ---- auth ----

func (b *Backend) Login(ctx context.Context, email, pass string) (string, error) {
	var userID int64
	var hash string
	err := b.pool.QueryRow(ctx,
		`SELECT id, password_hash FROM users WHERE email = $1`, email,
	).Scan(&userID, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: invalid email or password", collab.ErrUpstream)
	}
	if err != nil {
		return "", fmt.Errorf("%w: looking up user: %v", collab.ErrUpstream, err)
	}

	match, err := argon2id.Verify(pass, hash)
	if err != nil {
		return "", fmt.Errorf("%w: verifying password: %v", collab.ErrUpstream, err)
	}
	if !match {
		return "", fmt.Errorf("%w: invalid email or password", collab.ErrUpstream)
	}

	return b.issueToken(ctx, userID)
}

func (b *Backend) Register(ctx context.Context, params collab.RegisterParams) (string, error) {
	hash, err := argon2id.Hash(params.Password, argon2id.DefaultParams)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	var userID int64
	err = b.pool.QueryRow(ctx,
		`INSERT INTO users (email, username, first_name, last_name, password_hash)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		params.Email, params.Username, params.FirstName, params.LastName, hash,
	).Scan(&userID)
	if isPgCode(err, pgUniqueViolation) {
		return "", fmt.Errorf("%w: email or username is already taken", collab.ErrUpstream)
	}
	if err != nil {
		return "", fmt.Errorf("%w: creating user: %v", collab.ErrUpstream, err)
	}

	return b.issueToken(ctx, userID)
}

func (b *Backend) issueToken(ctx context.Context, userID int64) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	if _, err := b.pool.Exec(ctx,
		`INSERT INTO auth_tokens (token, user_id) VALUES ($1, $2)`, token, userID,
	); err != nil {
		return "", fmt.Errorf("%w: storing token: %v", collab.ErrUpstream, err)
	}
	return token, nil
}

func (b *Backend) userForToken(ctx context.Context, token string) (int64, error) {
	var userID int64
	err := b.pool.QueryRow(ctx,
		`SELECT user_id FROM auth_tokens WHERE token = $1`, token,
	).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, errors.New("unknown token")
	}
	if err != nil {
		return 0, fmt.Errorf("resolving token: %w", err)
	}
	return userID, nil
}

// ---- catalog ----

// listPage runs a LIMIT/OFFSET query fetching one row beyond the page size
// to learn whether a next page exists.
func (b *Backend) listPage(ctx context.Context, query string, page int, args ...any) (pgx.Rows, error) {
	offset := (page - 1) * b.pageSize
	args = append(args, b.pageSize+1, offset)
	return b.pool.Query(ctx, query, args...)
}

func (b *Backend) Ingredients(ctx context.Context, letter string, page int) (browse.Page, error) {
	rows, err := b.listPage(ctx,
		`SELECT id, name, measurement_unit FROM ingredients
		 WHERE name ILIKE $1 || '%' ORDER BY name, id LIMIT $2 OFFSET $3`,
		page, letter)
	if err != nil {
		return browse.Page{}, fmt.Errorf("%w: listing ingredients: %v", collab.ErrUpstream, err)
	}
	defer rows.Close()

	var items []browse.Item
	for rows.Next() {
		var ing recipe.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Unit); err != nil {
			return browse.Page{}, fmt.Errorf("scanning ingredient: %w", err)
		}
		items = append(items, browse.Item{ID: ing.ID, Label: fmt.Sprintf("%s (%s)", ing.Name, ing.Unit)})
	}
	if err := rows.Err(); err != nil {
		return browse.Page{}, fmt.Errorf("%w: iterating ingredients: %v", collab.ErrUpstream, err)
	}
	return b.toPage(items, page), nil
}

func (b *Backend) Tags(ctx context.Context, page int) (browse.Page, error) {
	rows, err := b.listPage(ctx,
		`SELECT id, name FROM tags ORDER BY name, id LIMIT $1 OFFSET $2`, page)
	if err != nil {
		return browse.Page{}, fmt.Errorf("%w: listing tags: %v", collab.ErrUpstream, err)
	}
	defer rows.Close()

	var items []browse.Item
	for rows.Next() {
		var t recipe.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return browse.Page{}, fmt.Errorf("scanning tag: %w", err)
		}
		items = append(items, browse.Item{ID: t.ID, Label: t.Name})
	}
	if err := rows.Err(); err != nil {
		return browse.Page{}, fmt.Errorf("%w: iterating tags: %v", collab.ErrUpstream, err)
	}
	return b.toPage(items, page), nil
}

func (b *Backend) toPage(items []browse.Item, page int) browse.Page {
	hasNext := len(items) > b.pageSize
	if hasNext {
		items = items[:b.pageSize]
	}
	return browse.Page{
		Items:     items,
		HasNext:   hasNext,
		HasPrev:   page > 1,
		Paginated: true,
	}
}

func (b *Backend) scanSummaries(rows pgx.Rows) ([]recipe.Summary, error) {
	defer rows.Close()
	var summaries []recipe.Summary
	for rows.Next() {
		var s recipe.Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.CookingTime); err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating recipes: %v", collab.ErrUpstream, err)
	}
	if len(summaries) > b.pageSize {
		summaries = summaries[:b.pageSize]
	}
	return summaries, nil
}

func (b *Backend) Recipes(ctx context.Context, page int) ([]recipe.Summary, error) {
	rows, err := b.listPage(ctx,
		`SELECT id, name, cooking_time FROM recipes ORDER BY id DESC LIMIT $1 OFFSET $2`, page)
	if err != nil {
		return nil, fmt.Errorf("%w: listing recipes: %v", collab.ErrUpstream, err)
	}
	return b.scanSummaries(rows)
}

func (b *Backend) Favorites(ctx context.Context, token string, page int) ([]recipe.Summary, error) {
	userID, err := b.userForToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", collab.ErrUpstream, err)
	}

	rows, err := b.listPage(ctx,
		`SELECT r.id, r.name, r.cooking_time FROM recipes r
		 JOIN favorites f ON f.recipe_id = r.id
		 WHERE f.user_id = $1 ORDER BY f.added_at DESC LIMIT $2 OFFSET $3`,
		page, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing favorites: %v", collab.ErrUpstream, err)
	}
	return b.scanSummaries(rows)
}

// ---- create ----

// Create inserts the recipe, its ingredient rows and its tag links in one
// transaction. Constraint violations surface as validation errors; other
// database failures are upstream errors.
func (b *Backend) Create(ctx context.Context, payload recipe.CreatePayload, token string) error {
	userID, err := b.userForToken(ctx, token)
	if err != nil {
		return &collab.ValidationError{Details: "invalid or expired token"}
	}

	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", collab.ErrUpstream, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var recipeID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO recipes (author_id, name, description, image, cooking_time)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		userID, payload.Name, payload.Text, payload.Image, payload.CookingTime,
	).Scan(&recipeID)
	if err != nil {
		return classifyCreateError("recipe", err)
	}

	for _, ing := range payload.Ingredients {
		if _, err := tx.Exec(ctx,
			`INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount) VALUES ($1, $2, $3)`,
			recipeID, ing.ID, ing.Amount,
		); err != nil {
			return classifyCreateError("ingredients", err)
		}
	}

	for _, tagID := range payload.Tags {
		if _, err := tx.Exec(ctx,
			`INSERT INTO recipe_tags (recipe_id, tag_id) VALUES ($1, $2)`,
			recipeID, tagID,
		); err != nil {
			return classifyCreateError("tags", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: committing recipe: %v", collab.ErrUpstream, err)
	}
	return nil
}

func classifyCreateError(field string, err error) error {
	if isPgCode(err, pgUniqueViolation) {
		return &collab.ValidationError{Details: field + ": duplicate entry"}
	}
	if isPgCode(err, pgForeignKeyViolation) {
		return &collab.ValidationError{Details: field + ": unknown identifier"}
	}
	return fmt.Errorf("%w: inserting %s: %v", collab.ErrUpstream, field, err)
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
