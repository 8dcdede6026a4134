package engine

import (
	"testing"

	"github.com/KobaLuck/recipe-bot/internal/browse"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    Action
		wantErr bool
	}{
		{name: "bare kind", data: "confirm", want: Action{Kind: ActionConfirm}},
		{name: "cancel", data: "cancel", want: Action{Kind: ActionCancel}},
		{name: "start", data: "start", want: Action{Kind: ActionStartAuth}},
		{name: "letter", data: "ing_letter:B", want: Action{Kind: ActionPickLetter, Letter: "B"}},
		{name: "cyrillic letter", data: "ing_letter:Б", want: Action{Kind: ActionPickLetter, Letter: "Б"}},
		{name: "page next", data: "ing_page:next", want: Action{Kind: ActionIngredientPage, Dir: browse.Next}},
		{name: "page prev", data: "tag_page:prev", want: Action{Kind: ActionTagPage, Dir: browse.Prev}},
		{name: "select", data: "ing_select:42", want: Action{Kind: ActionSelectItem, ID: 42}},
		{name: "toggle tag", data: "tag_select:7", want: Action{Kind: ActionToggleTag, ID: 7}},
		{name: "letter missing payload", data: "ing_letter", wantErr: true},
		{name: "page bad direction", data: "ing_page:sideways", wantErr: true},
		{name: "select bad id", data: "ing_select:abc", wantErr: true},
		{name: "unknown kind", data: "frobnicate", wantErr: true},
		{name: "empty", data: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAction(tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAction(%q) expected error, got %+v", tt.data, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAction(%q) unexpected error: %v", tt.data, err)
			}
			if got != tt.want {
				t.Errorf("ParseAction(%q) = %+v, want %+v", tt.data, got, tt.want)
			}
		})
	}
}

func TestActionData_RoundTrip(t *testing.T) {
	actions := []Action{
		{Kind: ActionConfirm},
		{Kind: ActionCancel},
		{Kind: ActionPickLetter, Letter: "C"},
		{Kind: ActionIngredientPage, Dir: browse.Next},
		{Kind: ActionTagPage, Dir: browse.Prev},
		{Kind: ActionSelectItem, ID: 19},
		{Kind: ActionToggleTag, ID: 4},
	}
	for _, a := range actions {
		parsed, err := ParseAction(a.Data())
		if err != nil {
			t.Errorf("ParseAction(%q) error: %v", a.Data(), err)
			continue
		}
		if parsed != a {
			t.Errorf("round trip of %+v gave %+v", a, parsed)
		}
	}
}
