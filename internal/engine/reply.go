package engine

import (
	"fmt"
	"strings"

	"github.com/KobaLuck/recipe-bot/internal/browse"
	"github.com/KobaLuck/recipe-bot/internal/recipe"
)

// Button is one selectable keyboard entry. The host transport renders it;
// Data comes back as callback data when pressed.
type Button struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// Message is one outgoing chat message with an optional inline keyboard.
type Message struct {
	Text     string     `json:"text"`
	Keyboard [][]Button `json:"keyboard,omitempty"`
}

// Reply is everything the engine wants delivered in response to one input.
type Reply struct {
	Messages []Message `json:"messages"`
}

func text(msg string) Reply {
	return Reply{Messages: []Message{{Text: msg}}}
}

func keyboard(msg string, kb [][]Button) Reply {
	return Reply{Messages: []Message{{Text: msg, Keyboard: kb}}}
}

func button(label string, a Action) Button {
	return Button{Label: label, Data: a.Data()}
}

const lettersPerRow = 6

var ingredientLetters = strings.Split(
	"A B C D E F G H I J K L M N O P Q R S T U V W X Y Z "+
		"А Б В Г Д Е Ё Ж З И Й К Л М Н О П Р С Т У Ф Х Ц Ч Ш Щ Ъ Ы Ь Э Ю Я", " ")

// letterKeyboard renders the first-letter picker with a done button to
// move on to tags.
func letterKeyboard() [][]Button {
	var kb [][]Button
	var row []Button
	for _, letter := range ingredientLetters {
		row = append(row, button(letter, Action{Kind: ActionPickLetter, Letter: letter}))
		if len(row) == lettersPerRow {
			kb = append(kb, row)
			row = nil
		}
	}
	if len(row) > 0 {
		kb = append(kb, row)
	}
	kb = append(kb, []Button{button("Done (continue to tags)", Action{Kind: ActionIngredientDone})})
	return kb
}

// pageKeyboard renders one page of selectable items plus navigation
// controls. Navigation buttons are only offered in a direction the last
// response confirmed, and never for unpaginated responses.
func pageKeyboard(page browse.Page, selectKind, pageKind ActionKind, extra ...Button) [][]Button {
	var kb [][]Button
	for _, item := range page.Items {
		kb = append(kb, []Button{button(item.Label, Action{Kind: selectKind, ID: item.ID})})
	}

	var nav []Button
	if page.Paginated && page.HasPrev {
		nav = append(nav, button("‹ Prev", Action{Kind: pageKind, Dir: browse.Prev}))
	}
	if page.Paginated && page.HasNext {
		nav = append(nav, button("Next ›", Action{Kind: pageKind, Dir: browse.Next}))
	}
	if len(nav) > 0 {
		kb = append(kb, nav)
	}

	if len(extra) > 0 {
		kb = append(kb, extra)
	}
	return kb
}

// summary renders the confirmation overview of a draft.
func summary(d *recipe.Draft) string {
	var b strings.Builder
	b.WriteString("Please review the recipe:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", d.Name)
	fmt.Fprintf(&b, "Description: %s\n", d.Description)
	fmt.Fprintf(&b, "Cooking time: %d min\n", d.CookingTime)

	b.WriteString("Ingredients:\n")
	if len(d.Ingredients) == 0 {
		b.WriteString("-\n")
	}
	for _, ing := range d.Ingredients {
		fmt.Fprintf(&b, "- id:%d × %s\n", ing.ID, ing.Amount)
	}

	names := make([]string, 0, len(d.Tags()))
	for _, t := range d.Tags() {
		names = append(names, t.Name)
	}
	fmt.Fprintf(&b, "Tags: %s\n", strings.Join(names, ", "))

	photo := "no"
	if d.ImageHandle != "" {
		photo = "yes"
	}
	fmt.Fprintf(&b, "Photo: %s\n", photo)

	source := d.SourceURL
	if source == "" {
		source = "-"
	}
	fmt.Fprintf(&b, "Source: %s\n\n", source)

	b.WriteString("Press Confirm to submit the recipe, or Cancel.")
	return b.String()
}

func confirmKeyboard() [][]Button {
	return [][]Button{
		{button("✅ Confirm", Action{Kind: ActionConfirm})},
		{button("❌ Cancel", Action{Kind: ActionCancel})},
	}
}

func skipKeyboard(kind ActionKind) [][]Button {
	return [][]Button{{button("Skip", Action{Kind: kind})}}
}

func moreOrDoneKeyboard() [][]Button {
	return [][]Button{
		{button("Add another ingredient", Action{Kind: ActionAddMore})},
		{button("Done, continue to tags", Action{Kind: ActionIngredientDone})},
	}
}

func authKeyboard() [][]Button {
	return [][]Button{
		{button("Log in", Action{Kind: ActionAuthLogin})},
		{button("Register", Action{Kind: ActionAuthRegister})},
		{button("Continue as guest", Action{Kind: ActionAuthAnonymous})},
	}
}
