package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KobaLuck/recipe-bot/internal/browse"
)

// ActionKind is the closed set of button actions the engine understands.
type ActionKind string

const (
	ActionStartAuth      ActionKind = "start"
	ActionAuthLogin      ActionKind = "auth_login"
	ActionAuthRegister   ActionKind = "auth_register"
	ActionAuthAnonymous  ActionKind = "auth_anon"
	ActionAddRecipe      ActionKind = "add_recipe"
	ActionViewList       ActionKind = "view_list"
	ActionViewFavorites  ActionKind = "view_favorites"
	ActionPickLetter     ActionKind = "ing_letter"
	ActionIngredientPage ActionKind = "ing_page"
	ActionSelectItem     ActionKind = "ing_select"
	ActionAddMore        ActionKind = "ing_more"
	ActionIngredientDone ActionKind = "ing_done"
	ActionTagPage        ActionKind = "tag_page"
	ActionToggleTag      ActionKind = "tag_select"
	ActionTagsDone       ActionKind = "tags_done"
	ActionSkipImage      ActionKind = "skip_image"
	ActionSkipURL        ActionKind = "skip_url"
	ActionConfirm        ActionKind = "confirm"
	ActionCancel         ActionKind = "cancel"
)

// Action is a button press decoded into a tagged variant. Wire data uses
// the "kind:payload" form; it is decoded exactly once, at the transport
// boundary, and dispatched by exhaustive switch inside the engine.
type Action struct {
	Kind   ActionKind
	Letter string           // ActionPickLetter
	Dir    browse.Direction // ActionIngredientPage, ActionTagPage
	ID     int64            // ActionSelectItem, ActionToggleTag
}

// ParseAction decodes callback data into an Action. Unknown kinds and
// malformed payloads are errors; the transport drops such updates.
func ParseAction(data string) (Action, error) {
	kind, payload, _ := strings.Cut(data, ":")

	switch ActionKind(kind) {
	case ActionStartAuth, ActionAuthLogin, ActionAuthRegister, ActionAuthAnonymous,
		ActionAddRecipe, ActionViewList, ActionViewFavorites,
		ActionAddMore, ActionIngredientDone, ActionTagsDone,
		ActionSkipImage, ActionSkipURL, ActionConfirm, ActionCancel:
		return Action{Kind: ActionKind(kind)}, nil

	case ActionPickLetter:
		if payload == "" {
			return Action{}, fmt.Errorf("letter action without a letter")
		}
		return Action{Kind: ActionPickLetter, Letter: payload}, nil

	case ActionIngredientPage, ActionTagPage:
		dir, err := parseDirection(payload)
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionKind(kind), Dir: dir}, nil

	case ActionSelectItem, ActionToggleTag:
		id, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			return Action{}, fmt.Errorf("parsing item id %q: %w", payload, err)
		}
		return Action{Kind: ActionKind(kind), ID: id}, nil
	}

	return Action{}, fmt.Errorf("unknown action %q", kind)
}

func parseDirection(payload string) (browse.Direction, error) {
	switch payload {
	case "next":
		return browse.Next, nil
	case "prev":
		return browse.Prev, nil
	}
	return 0, fmt.Errorf("unknown page direction %q", payload)
}

// Data encodes the action back into its wire form for keyboards.
func (a Action) Data() string {
	switch a.Kind {
	case ActionPickLetter:
		return string(a.Kind) + ":" + a.Letter
	case ActionIngredientPage, ActionTagPage:
		if a.Dir == browse.Prev {
			return string(a.Kind) + ":prev"
		}
		return string(a.Kind) + ":next"
	case ActionSelectItem, ActionToggleTag:
		return fmt.Sprintf("%s:%d", a.Kind, a.ID)
	}
	return string(a.Kind)
}
