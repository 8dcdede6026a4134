package browse

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// pagesFetcher serves a fixed sequence of pages and counts fetches.
func pagesFetcher(pages map[int]Page, calls *[]int) Fetcher {
	return func(ctx context.Context, filter string, page int) (Page, error) {
		if calls != nil {
			*calls = append(*calls, page)
		}
		p, ok := pages[page]
		if !ok {
			return Page{}, fmt.Errorf("no page %d", page)
		}
		return p, nil
	}
}

func TestOpen(t *testing.T) {
	first := Page{
		Items:     []Item{{ID: 1, Label: "Apple"}, {ID: 2, Label: "Apricot"}},
		HasNext:   true,
		Paginated: true,
	}
	var calls []int
	b, err := Open(context.Background(), pagesFetcher(map[int]Page{1: first}, &calls), "A")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if b.PageNumber() != 1 {
		t.Errorf("PageNumber() = %d, want 1", b.PageNumber())
	}
	if b.Filter() != "A" {
		t.Errorf("Filter() = %q, want %q", b.Filter(), "A")
	}
	if len(b.Page().Items) != 2 {
		t.Errorf("Page().Items length = %d, want 2", len(b.Page().Items))
	}
	if len(calls) != 1 || calls[0] != 1 {
		t.Errorf("fetch calls = %v, want [1]", calls)
	}
}

func TestOpen_FetchError(t *testing.T) {
	fetch := func(ctx context.Context, filter string, page int) (Page, error) {
		return Page{}, errors.New("boom")
	}
	if _, err := Open(context.Background(), fetch, "A"); err == nil {
		t.Fatal("Open() expected error, got nil")
	}
}

func TestGo_Forward(t *testing.T) {
	pages := map[int]Page{
		1: {Items: []Item{{ID: 1, Label: "a"}}, HasNext: true, Paginated: true},
		2: {Items: []Item{{ID: 2, Label: "b"}}, HasPrev: true, Paginated: true},
	}
	b, err := Open(context.Background(), pagesFetcher(pages, nil), "")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	page, err := b.Go(context.Background(), Next)
	if err != nil {
		t.Fatalf("Go(Next) error = %v", err)
	}
	if b.PageNumber() != 2 {
		t.Errorf("PageNumber() = %d, want 2", b.PageNumber())
	}
	if len(page.Items) != 1 || page.Items[0].ID != 2 {
		t.Errorf("Go(Next) returned wrong page: %+v", page)
	}

	page, err = b.Go(context.Background(), Prev)
	if err != nil {
		t.Fatalf("Go(Prev) error = %v", err)
	}
	if b.PageNumber() != 1 {
		t.Errorf("PageNumber() after Prev = %d, want 1", b.PageNumber())
	}
	if page.Items[0].ID != 1 {
		t.Errorf("Go(Prev) returned wrong page: %+v", page)
	}
}

func TestGo_GuardedByPageFlags(t *testing.T) {
	var calls []int
	pages := map[int]Page{
		1: {Items: []Item{{ID: 1, Label: "only"}}, Paginated: true},
	}
	b, err := Open(context.Background(), pagesFetcher(pages, &calls), "")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	// Neither direction was confirmed by the response, so no fetch happens.
	for _, dir := range []Direction{Next, Prev} {
		page, err := b.Go(context.Background(), dir)
		if err != nil {
			t.Fatalf("Go(%d) error = %v", dir, err)
		}
		if page.Items[0].ID != 1 {
			t.Errorf("Go(%d) should return the current page", dir)
		}
		if b.PageNumber() != 1 {
			t.Errorf("Go(%d) moved the cursor to %d", dir, b.PageNumber())
		}
	}
	if len(calls) != 1 {
		t.Errorf("fetch calls = %v, want only the opening fetch", calls)
	}
}

func TestGo_ErrorKeepsCursor(t *testing.T) {
	fail := errors.New("upstream down")
	first := Page{Items: []Item{{ID: 1, Label: "a"}}, HasNext: true, Paginated: true}
	fetch := func(ctx context.Context, filter string, page int) (Page, error) {
		if page == 1 {
			return first, nil
		}
		return Page{}, fail
	}

	b, err := Open(context.Background(), fetch, "")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	page, err := b.Go(context.Background(), Next)
	if !errors.Is(err, fail) {
		t.Fatalf("Go(Next) error = %v, want wrapped %v", err, fail)
	}
	if b.PageNumber() != 1 {
		t.Errorf("cursor moved to %d on error, want 1", b.PageNumber())
	}
	if len(page.Items) != 1 || page.Items[0].ID != 1 {
		t.Errorf("Go(Next) on error should return the previous page, got %+v", page)
	}
}

func TestFind(t *testing.T) {
	pages := map[int]Page{
		1: {Items: []Item{{ID: 10, Label: "Salt"}, {ID: 20, Label: "Sugar"}}},
	}
	b, err := Open(context.Background(), pagesFetcher(pages, nil), "S")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	item, ok := b.Find(20)
	if !ok {
		t.Fatal("Find(20) = false, want true")
	}
	if item.Label != "Sugar" {
		t.Errorf("Find(20) label = %q, want %q", item.Label, "Sugar")
	}

	if _, ok := b.Find(99); ok {
		t.Error("Find(99) = true, want false")
	}
}
