// Package submit turns a completed draft into a single create request and
// maps the collaborator's answer onto a terminal submission result.
package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KobaLuck/recipe-bot/internal/collab"
	"github.com/KobaLuck/recipe-bot/internal/creds"
	"github.com/KobaLuck/recipe-bot/internal/media"
	"github.com/KobaLuck/recipe-bot/internal/recipe"
)

// Outcome classifies how a submission ended.
type Outcome string

const (
	Success          Outcome = "success"
	Unauthenticated  Outcome = "unauthenticated"
	ValidationFailed Outcome = "validation_failed"
	UpstreamFailed   Outcome = "upstream_failed"
)

// Result is the user-visible end state of one submission attempt.
type Result struct {
	Outcome Outcome
	Details string
}

// Submitter issues create requests for completed drafts.
type Submitter struct {
	creator     collab.RecipeCreator
	fetcher     collab.MediaFetcher
	credentials creds.Store
	logger      *slog.Logger
}

func New(creator collab.RecipeCreator, fetcher collab.MediaFetcher, credentials creds.Store, logger *slog.Logger) *Submitter {
	return &Submitter{
		creator:     creator,
		fetcher:     fetcher,
		credentials: credentials,
		logger:      logger,
	}
}

// Submit submits the draft on behalf of userKey. A missing stored
// credential ends the flow before any collaborator is contacted; there is
// no anonymous submission.
func (s *Submitter) Submit(ctx context.Context, draft *recipe.Draft, userKey int64) (Result, error) {
	token, ok, err := s.credentials.Load(ctx, userKey)
	if err != nil {
		return Result{}, fmt.Errorf("loading credential: %w", err)
	}
	if !ok {
		return Result{Outcome: Unauthenticated}, nil
	}

	payload := recipe.CreatePayload{
		Name:        draft.Name,
		Text:        draft.MergedDescription(),
		CookingTime: draft.CookingTime,
		Ingredients: draft.Ingredients,
		Tags:        draft.TagIDs(),
		Image:       s.resolveImage(ctx, draft.ImageHandle),
	}

	err = s.creator.Create(ctx, payload, token)
	switch {
	case err == nil:
		return Result{Outcome: Success}, nil
	case isValidationError(err):
		var verr *collab.ValidationError
		errors.As(err, &verr)
		return Result{Outcome: ValidationFailed, Details: verr.Details}, nil
	default:
		s.logger.ErrorContext(ctx, "recipe create failed", slog.Any("error", err))
		return Result{Outcome: UpstreamFailed, Details: err.Error()}, nil
	}
}

// resolveImage fetches the stored photo handle and inlines it as a data
// URI. Any failure, including an empty handle, degrades to the fixed
// placeholder; media problems never surface to the user.
func (s *Submitter) resolveImage(ctx context.Context, handle string) string {
	if handle == "" {
		return recipe.PlaceholderImage
	}

	data, mimeType, err := s.fetcher.FetchBinary(ctx, handle)
	if err != nil {
		s.logger.WarnContext(ctx, "media fetch failed, using placeholder", slog.Any("error", err))
		return recipe.PlaceholderImage
	}
	return media.DataURI(data, mimeType)
}

func isValidationError(err error) bool {
	var verr *collab.ValidationError
	return errors.As(err, &verr)
}
