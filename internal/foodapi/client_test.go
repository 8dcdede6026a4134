package foodapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/KobaLuck/recipe-bot/internal/collab"
	"github.com/KobaLuck/recipe-bot/internal/log"
	"github.com/KobaLuck/recipe-bot/internal/recipe"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 0
	httpClient.Logger = nil
	return New(server.URL, httpClient, log.NullLogger())
}

func TestLogin(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/token/login/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding login body: %v", err)
		}
		if body["email"] != "cook@example.com" || body["password"] != "secret" {
			t.Errorf("login body = %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"auth_token": "tok-1"})
	}))

	token, err := client.Login(context.Background(), "cook@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token != "tok-1" {
		t.Errorf("token = %q, want %q", token, "tok-1")
	}
}

func TestLogin_Rejected(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"non_field_errors": ["Unable to log in with provided credentials."]}`))
	}))

	_, err := client.Login(context.Background(), "cook@example.com", "wrong")
	if !errors.Is(err, collab.ErrUpstream) {
		t.Fatalf("Login() error = %v, want ErrUpstream", err)
	}
}

func TestRegister_AutoLogin(t *testing.T) {
	var registered bool
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/users/":
			registered = true
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": 1}`))
		case "/auth/token/login/":
			_ = json.NewEncoder(w).Encode(map[string]string{"auth_token": "tok-2"})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))

	token, err := client.Register(context.Background(), collab.RegisterParams{
		Email: "new@example.com", Username: "new", FirstName: "N", LastName: "C", Password: "pw",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !registered {
		t.Error("register endpoint was not called")
	}
	if token != "tok-2" {
		t.Errorf("token = %q, want %q", token, "tok-2")
	}
}

func TestIngredients_PaginatedEnvelope(t *testing.T) {
	next := "http://x/ingredients/?page=2"
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got != "B" {
			t.Errorf("name query = %q, want B", got)
		}
		if got := r.URL.Query().Get("page"); got != "1" {
			t.Errorf("page query = %q, want 1", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"count":    12,
			"next":     next,
			"previous": nil,
			"results": []recipe.Ingredient{
				{ID: 1, Name: "Beetroot", Unit: "kg"},
			},
		})
	}))

	page, err := client.Ingredients(context.Background(), "B", 1)
	if err != nil {
		t.Fatalf("Ingredients() error = %v", err)
	}
	if !page.Paginated {
		t.Error("Paginated = false for an envelope response")
	}
	if !page.HasNext || page.HasPrev {
		t.Errorf("HasNext = %v, HasPrev = %v; want true, false", page.HasNext, page.HasPrev)
	}
	if len(page.Items) != 1 || page.Items[0].Label != "Beetroot (kg)" {
		t.Errorf("items = %+v", page.Items)
	}
}

func TestTags_BareArray(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 1, "name": "breakfast"}, {"id": 2, "name": "dinner"}]`))
	}))

	page, err := client.Tags(context.Background(), 1)
	if err != nil {
		t.Fatalf("Tags() error = %v", err)
	}
	if page.Paginated {
		t.Error("Paginated = true for a bare array response")
	}
	if page.HasNext || page.HasPrev {
		t.Error("navigation flags set for a bare array response")
	}
	if len(page.Items) != 2 || page.Items[1].Label != "dinner" {
		t.Errorf("items = %+v", page.Items)
	}
}

func TestFavorites_SendsTokenAndFilter(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Token tok-3" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("is_favorited"); got != "1" {
			t.Errorf("is_favorited = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"count":   1,
			"results": []recipe.Summary{{ID: 9, Name: "Syrniki", CookingTime: 25}},
		})
	}))

	summaries, err := client.Favorites(context.Background(), "tok-3", 1)
	if err != nil {
		t.Fatalf("Favorites() error = %v", err)
	}
	if len(summaries) != 1 || summaries[0].Name != "Syrniki" {
		t.Errorf("summaries = %+v", summaries)
	}
}

func TestCreate_Success(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Token tok-4" {
			t.Errorf("Authorization = %q", got)
		}
		var payload recipe.CreatePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decoding create body: %v", err)
		}
		if payload.Name != "Borscht" {
			t.Errorf("payload name = %q", payload.Name)
		}
		w.WriteHeader(http.StatusCreated)
	}))

	err := client.Create(context.Background(), recipe.CreatePayload{Name: "Borscht"}, "tok-4")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func TestCreate_ValidationError(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"cooking_time": ["Ensure this value is greater than or equal to 1."]}`))
	}))

	err := client.Create(context.Background(), recipe.CreatePayload{}, "tok")
	var verr *collab.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Create() error = %v, want *collab.ValidationError", err)
	}
	if verr.Details != "cooking_time: Ensure this value is greater than or equal to 1." {
		t.Errorf("details = %q", verr.Details)
	}
}

func TestCreate_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 0
	httpClient.Logger = nil
	client := New(server.URL, httpClient, log.NullLogger())

	err := client.Create(context.Background(), recipe.CreatePayload{}, "tok")
	if !errors.Is(err, collab.ErrUpstream) {
		t.Fatalf("Create() error = %v, want ErrUpstream", err)
	}
}
