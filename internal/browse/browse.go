// Package browse drives "select one item from a long, externally paginated
// list" sub-dialogues. The same browser is used for picking ingredients by
// their first letter and for picking tags.
package browse

import (
	"context"
	"fmt"
)

// Item is one selectable entry of a page.
type Item struct {
	ID    int64
	Label string
}

// Page is the normalized form of a list collaborator response. Collaborators
// answer either with a paginated envelope or with a bare ordered sequence;
// Paginated records which shape was seen so that navigation controls are
// only offered when pagination metadata was actually present.
type Page struct {
	Items     []Item
	HasNext   bool
	HasPrev   bool
	Paginated bool
}

// Fetcher retrieves one page of items matching a filter from a collaborator.
type Fetcher func(ctx context.Context, filter string, page int) (Page, error)

// Direction of a navigation action.
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// Browser holds the cursor of one in-progress list selection: the filter
// key, the current page number and the last page received. It is created
// when a list-browsing step is entered and discarded when the step is left.
type Browser struct {
	fetch  Fetcher
	filter string
	page   int
	last   Page
}

// Open requests page 1 of items matching filter. The filter may be empty
// (no filter, used for tags) or a single-character prefix (ingredients).
func Open(ctx context.Context, fetch Fetcher, filter string) (*Browser, error) {
	first, err := fetch(ctx, filter, 1)
	if err != nil {
		return nil, fmt.Errorf("opening list at %q: %w", filter, err)
	}
	return &Browser{fetch: fetch, filter: filter, page: 1, last: first}, nil
}

// Page returns the page the cursor currently points at.
func (b *Browser) Page() Page { return b.last }

// PageNumber returns the 1-based cursor position.
func (b *Browser) PageNumber() int { return b.page }

// Filter returns the filter key the browser was opened with.
func (b *Browser) Filter() string { return b.filter }

// Go moves the cursor one page in the given direction. The move is only
// attempted when the last response confirmed that such a page exists. On a
// collaborator error the cursor does not move and the previous page stays
// current, so the caller can re-render it with an error banner.
func (b *Browser) Go(ctx context.Context, dir Direction) (Page, error) {
	switch dir {
	case Next:
		if !b.last.HasNext {
			return b.last, nil
		}
	case Prev:
		if !b.last.HasPrev {
			return b.last, nil
		}
	default:
		return b.last, fmt.Errorf("unknown direction %d", dir)
	}

	target := b.page + int(dir)
	page, err := b.fetch(ctx, b.filter, target)
	if err != nil {
		return b.last, fmt.Errorf("fetching page %d: %w", target, err)
	}
	b.page = target
	b.last = page
	return page, nil
}

// Find returns the item with the given identifier from the current page.
func (b *Browser) Find(id int64) (Item, bool) {
	for _, it := range b.last.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
