// Package setup is responsible for setting up components.
package setup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KobaLuck/recipe-bot/internal/collab"
	"github.com/KobaLuck/recipe-bot/internal/config"
	"github.com/KobaLuck/recipe-bot/internal/creds"
	"github.com/KobaLuck/recipe-bot/internal/engine"
	"github.com/KobaLuck/recipe-bot/internal/env"
	"github.com/KobaLuck/recipe-bot/internal/foodapi"
	"github.com/KobaLuck/recipe-bot/internal/media"
	"github.com/KobaLuck/recipe-bot/internal/session"
	"github.com/KobaLuck/recipe-bot/internal/storebackend"
	"github.com/KobaLuck/recipe-bot/internal/submit"
)

// collaborators bundles the three site-facing interfaces one backend
// variant provides.
type collaborators struct {
	auth    collab.Authenticator
	catalog collab.Catalog
	creator collab.RecipeCreator
}

func httpClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.HTTPClient.Timeout = 30 * time.Second
	client.Logger = nil
	return client
}

func apiBackend(conf config.Config, logger *slog.Logger) collaborators {
	client := foodapi.New(conf.APIBase, httpClient(), logger)
	return collaborators{auth: client, catalog: client, creator: client}
}

func databaseBackend(ctx context.Context, conf config.Config) (collaborators, error) {
	pool, err := pgxpool.New(ctx, conf.Database.URL())
	if err != nil {
		return collaborators{}, fmt.Errorf("creating database pool: %w", err)
	}

	backend := storebackend.New(pool, conf.PageSize)
	if err := backend.EnsureSchema(ctx); err != nil {
		return collaborators{}, fmt.Errorf("initializing database: %w", err)
	}
	return collaborators{auth: backend, catalog: backend, creator: backend}, nil
}

// Environment wires the full application from its config: the backend
// variant, credential store, session store and conversation engine.
func Environment(ctx context.Context, conf config.Config, logger *slog.Logger) (*env.Env, error) {
	environment := env.New(logger)
	environment.Config = conf

	var (
		backends collaborators
		err      error
	)
	switch conf.Backend {
	case config.BackendDatabase:
		backends, err = databaseBackend(ctx, conf)
		if err != nil {
			return nil, err
		}
	default:
		backends = apiBackend(conf, logger)
	}

	credentials, err := creds.OpenSQLite(conf.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}
	environment.Credentials = credentials

	environment.Sessions = session.NewStore(time.Duration(conf.SessionTTLMinutes) * time.Minute)

	submitter := submit.New(
		backends.creator,
		media.NewHTTPFetcher(httpClient()),
		credentials,
		logger,
	)

	environment.Engine = engine.New(engine.Options{
		Logger:            logger,
		Sessions:          environment.Sessions,
		Auth:              backends.auth,
		Catalog:           backends.catalog,
		Submitter:         submitter,
		Credentials:       credentials,
		StrictIngredients: conf.StrictIngredients,
	})

	return environment, nil
}
