// Package foodapi is the HTTP-API deployment variant of the collaborator
// interfaces: authentication, catalog listing and recipe creation against
// the recipe site's REST API.
package foodapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/KobaLuck/recipe-bot/internal/browse"
	"github.com/KobaLuck/recipe-bot/internal/collab"
	"github.com/KobaLuck/recipe-bot/internal/recipe"
)

// Client talks to the recipe site API. All requests go through a retrying
// HTTP client; a response status outside 2xx surfaces as collab.ErrUpstream
// (or *collab.ValidationError for create).
type Client struct {
	http   *retryablehttp.Client
	base   string
	logger *slog.Logger
}

var (
	_ collab.Authenticator = (*Client)(nil)
	_ collab.Catalog       = (*Client)(nil)
	_ collab.RecipeCreator = (*Client)(nil)
)

func New(base string, httpClient *retryablehttp.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = retryablehttp.NewClient()
		httpClient.Logger = nil
	}
	return &Client{
		http:   httpClient,
		base:   strings.TrimRight(base, "/") + "/",
		logger: logger,
	}
}

func (c *Client) request(ctx context.Context, method, path string, query url.Values, payload any, token string) (int, []byte, error) {
	u := c.base + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s %s: %v", collab.ErrUpstream, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response body: %w", err)
	}
	return resp.StatusCode, data, nil
}

type tokenResponse struct {
	AuthToken string `json:"auth_token"`
}

// Login exchanges email and password for an auth token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	payload := map[string]string{"email": email, "password": password}
	status, body, err := c.request(ctx, http.MethodPost, "auth/token/login/", nil, payload, "")
	if err != nil {
		return "", err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", fmt.Errorf("%w: login rejected: %s", collab.ErrUpstream, RenderErrors(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil || tr.AuthToken == "" {
		return "", fmt.Errorf("%w: login response missing auth token", collab.ErrUpstream)
	}
	return tr.AuthToken, nil
}

// Register creates the account and immediately logs it in.
func (c *Client) Register(ctx context.Context, params collab.RegisterParams) (string, error) {
	status, body, err := c.request(ctx, http.MethodPost, "auth/users/", nil, params, "")
	if err != nil {
		return "", err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", fmt.Errorf("%w: registration rejected: %s", collab.ErrUpstream, RenderErrors(body))
	}

	token, err := c.Login(ctx, params.Email, params.Password)
	if err != nil {
		return "", fmt.Errorf("account created but automatic login failed: %w", err)
	}
	return token, nil
}

// envelope is the paginated response shape: count/next/previous/results.
type envelope struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  json.RawMessage `json:"results"`
}

// normalizePage converts a list response body into a browse.Page. The body
// is either a paginated envelope or a bare array; pagination controls are
// only offered when the envelope shape was seen.
func normalizePage(body []byte, toItems func(json.RawMessage) ([]browse.Item, error)) (browse.Page, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		items, err := toItems(trimmed)
		if err != nil {
			return browse.Page{}, err
		}
		return browse.Page{Items: items}, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return browse.Page{}, fmt.Errorf("decoding paginated response: %w", err)
	}
	items, err := toItems(env.Results)
	if err != nil {
		return browse.Page{}, err
	}
	return browse.Page{
		Items:     items,
		HasNext:   env.Next != nil,
		HasPrev:   env.Previous != nil,
		Paginated: true,
	}, nil
}

func ingredientItems(raw json.RawMessage) ([]browse.Item, error) {
	var ingredients []recipe.Ingredient
	if err := json.Unmarshal(raw, &ingredients); err != nil {
		return nil, fmt.Errorf("decoding ingredients: %w", err)
	}
	items := make([]browse.Item, 0, len(ingredients))
	for _, ing := range ingredients {
		items = append(items, browse.Item{ID: ing.ID, Label: fmt.Sprintf("%s (%s)", ing.Name, ing.Unit)})
	}
	return items, nil
}

func tagItems(raw json.RawMessage) ([]browse.Item, error) {
	var tags []recipe.Tag
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	items := make([]browse.Item, 0, len(tags))
	for _, t := range tags {
		items = append(items, browse.Item{ID: t.ID, Label: t.Name})
	}
	return items, nil
}

func (c *Client) list(ctx context.Context, path string, query url.Values, toItems func(json.RawMessage) ([]browse.Item, error)) (browse.Page, error) {
	status, body, err := c.request(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return browse.Page{}, err
	}
	if status != http.StatusOK {
		return browse.Page{}, fmt.Errorf("%w: listing %s: %s", collab.ErrUpstream, path, RenderErrors(body))
	}
	return normalizePage(body, toItems)
}

// Ingredients lists ingredients whose name starts with letter.
func (c *Client) Ingredients(ctx context.Context, letter string, page int) (browse.Page, error) {
	query := url.Values{}
	if letter != "" {
		query.Set("name", letter)
	}
	query.Set("page", strconv.Itoa(page))
	return c.list(ctx, "ingredients/", query, ingredientItems)
}

// Tags lists all tags.
func (c *Client) Tags(ctx context.Context, page int) (browse.Page, error) {
	query := url.Values{"page": []string{strconv.Itoa(page)}}
	return c.list(ctx, "tags/", query, tagItems)
}

func (c *Client) recipeList(ctx context.Context, query url.Values, token string) ([]recipe.Summary, error) {
	status, body, err := c.request(ctx, http.MethodGet, "recipes/", query, nil, token)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: listing recipes: %s", collab.ErrUpstream, RenderErrors(body))
	}

	trimmed := bytes.TrimSpace(body)
	var raw json.RawMessage = trimmed
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("decoding recipe list: %w", err)
		}
		raw = env.Results
	}

	var summaries []recipe.Summary
	if err := json.Unmarshal(raw, &summaries); err != nil {
		return nil, fmt.Errorf("decoding recipe list: %w", err)
	}
	return summaries, nil
}

// Recipes lists existing recipes.
func (c *Client) Recipes(ctx context.Context, page int) ([]recipe.Summary, error) {
	query := url.Values{"page": []string{strconv.Itoa(page)}}
	return c.recipeList(ctx, query, "")
}

// Favorites lists the user's favorited recipes.
func (c *Client) Favorites(ctx context.Context, token string, page int) ([]recipe.Summary, error) {
	query := url.Values{
		"page":         []string{strconv.Itoa(page)},
		"is_favorited": []string{"1"},
	}
	return c.recipeList(ctx, query, token)
}

// Create issues the recipe create request. Statuses 200 and 201 are
// success; anything else is a *collab.ValidationError carrying the
// rendered payload.
func (c *Client) Create(ctx context.Context, payload recipe.CreatePayload, token string) error {
	status, body, err := c.request(ctx, http.MethodPost, "recipes/", nil, payload, token)
	if err != nil {
		return err
	}
	if status == http.StatusOK || status == http.StatusCreated {
		return nil
	}
	return &collab.ValidationError{Details: RenderErrors(body)}
}
