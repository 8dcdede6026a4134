// Package recipe holds the domain types for the recipe-creation flow:
// catalog items, the in-progress draft and the final create payload.
package recipe

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// PlaceholderImage is a 1x1 transparent PNG used whenever a recipe photo
// cannot be resolved. The create payload's image field is never empty.
const PlaceholderImage = "data:image/png;base64," +
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR4nGNgYAAAAAMAAWgmWQ0AAAAASUVORK5CYII="

// Ingredient is a catalog ingredient as returned by a list collaborator.
type Ingredient struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Unit string `json:"measurement_unit"`
}

// Tag is a catalog tag as returned by a list collaborator.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Summary is the short recipe form used by list views.
type Summary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CookingTime int    `json:"cooking_time"`
}

// DraftIngredient is one selected ingredient with its amount.
type DraftIngredient struct {
	ID     int64  `json:"id" validate:"gte=1"`
	Amount string `json:"amount" validate:"required"`
}

// Draft accumulates the fields of one in-flight recipe submission. It lives
// in session-scoped memory and is discarded on submit or cancel.
type Draft struct {
	Name        string            `validate:"required"`
	Description string            `validate:"required"`
	CookingTime int               `validate:"gte=1"`
	// An empty ingredient list is legal here; whether it may leave the
	// ingredient loop is a deployment setting enforced by the engine.
	Ingredients []DraftIngredient `validate:"dive"`
	ImageHandle string
	SourceURL   string

	// Selection order of tags is irrelevant; toggling twice removes a tag.
	tagSet map[int64]bool
	tags   []Tag
}

// ToggleTag adds the tag to the selection, or removes it if it was already
// selected. It reports whether the tag is selected after the call.
func (d *Draft) ToggleTag(t Tag) bool {
	if d.tagSet == nil {
		d.tagSet = make(map[int64]bool)
	}
	if d.tagSet[t.ID] {
		delete(d.tagSet, t.ID)
		for i, existing := range d.tags {
			if existing.ID == t.ID {
				d.tags = append(d.tags[:i], d.tags[i+1:]...)
				break
			}
		}
		return false
	}
	d.tagSet[t.ID] = true
	d.tags = append(d.tags, t)
	return true
}

// Tags returns the selected tags.
func (d *Draft) Tags() []Tag { return d.tags }

// TagIDs returns the identifiers of the selected tags.
func (d *Draft) TagIDs() []int64 {
	ids := make([]int64, 0, len(d.tags))
	for _, t := range d.tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// AddIngredient appends a selected ingredient with its amount. Duplicates
// are kept; the create collaborator decides whether they are acceptable.
func (d *Draft) AddIngredient(id int64, amount string) {
	d.Ingredients = append(d.Ingredients, DraftIngredient{ID: id, Amount: amount})
}

// Complete reports whether every mandatory field is present and valid. The
// confirm step must not be reachable while this returns an error.
func (d *Draft) Complete() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(d); err != nil {
		return fmt.Errorf("draft incomplete: %w", err)
	}
	if len(d.tags) == 0 {
		return fmt.Errorf("draft incomplete: no tags selected")
	}
	return nil
}

// MergedDescription returns the description with the optional source URL
// appended as a final line.
func (d *Draft) MergedDescription() string {
	text := d.Description
	if url := strings.TrimSpace(d.SourceURL); url != "" {
		text += "\n\nSource: " + url
	}
	return text
}

// CreatePayload is the single create request issued at submission.
type CreatePayload struct {
	Name        string            `json:"name"`
	Text        string            `json:"text"`
	CookingTime int               `json:"cooking_time"`
	Ingredients []DraftIngredient `json:"ingredients"`
	Tags        []int64           `json:"tags"`
	Image       string            `json:"image"`
}
