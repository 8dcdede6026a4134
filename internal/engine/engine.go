// Package engine implements the conversation state machine that drives the
// guided recipe-creation and authentication dialogues. The engine owns the
// active step of each session, validates incoming input, mutates the draft
// or browse cursor, and computes the next step. No failure is fatal: every
// error resolves to a re-prompt or a terminal message.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KobaLuck/recipe-bot/internal/browse"
	"github.com/KobaLuck/recipe-bot/internal/collab"
	"github.com/KobaLuck/recipe-bot/internal/creds"
	"github.com/KobaLuck/recipe-bot/internal/password"
	"github.com/KobaLuck/recipe-bot/internal/recipe"
	"github.com/KobaLuck/recipe-bot/internal/session"
	"github.com/KobaLuck/recipe-bot/internal/submit"
	"github.com/KobaLuck/recipe-bot/internal/validate"
)

// Input is one incoming update for a single conversation: either free text,
// an uploaded photo handle, or a button action already decoded by the
// transport.
type Input struct {
	Chat        int64
	User        int64
	Text        string
	PhotoHandle string
	Action      *Action
}

// Options configures an Engine.
type Options struct {
	Logger      *slog.Logger
	Sessions    *session.Store
	Auth        collab.Authenticator
	Catalog     collab.Catalog
	Submitter   *submit.Submitter
	Credentials creds.Store

	// StrictIngredients requires at least one ingredient before the
	// ingredient loop may be left. Deployment-dependent.
	StrictIngredients bool
}

// Engine drives the conversation state machine.
type Engine struct {
	logger      *slog.Logger
	sessions    *session.Store
	auth        collab.Authenticator
	catalog     collab.Catalog
	submitter   *submit.Submitter
	credentials creds.Store
	strict      bool
}

func New(opts Options) *Engine {
	return &Engine{
		logger:      opts.Logger,
		sessions:    opts.Sessions,
		auth:        opts.Auth,
		catalog:     opts.Catalog,
		submitter:   opts.Submitter,
		credentials: opts.Credentials,
		strict:      opts.StrictIngredients,
	}
}

// Handle processes one update for the conversation identified by the input's
// chat and user. Updates of the same conversation are serialized by the
// session store; different conversations proceed concurrently.
func (e *Engine) Handle(ctx context.Context, in Input) Reply {
	key := session.Key{ChatID: in.Chat, UserID: in.User}
	sess, release := e.sessions.Acquire(key)
	defer release()

	// Entry actions and the global cancel are honored from any step.
	if in.Action != nil {
		switch in.Action.Kind {
		case ActionCancel:
			e.end(sess)
			return text("Operation cancelled.")
		case ActionStartAuth:
			return e.startAuth(sess)
		case ActionAddRecipe:
			return e.startRecipe(sess)
		case ActionViewList:
			return e.viewList(ctx)
		case ActionViewFavorites:
			return e.viewFavorites(ctx, in.User)
		}
	}

	switch sess.Step {
	case StepIdle:
		return text("Nothing in progress. Use the menu to log in or create a recipe.")
	case StepAuthChoice:
		return e.handleAuthChoice(ctx, sess, in)
	case StepLoginEmail:
		return e.handleLoginEmail(sess, in)
	case StepLoginPassword:
		return e.handleLoginPassword(ctx, sess, in)
	case StepRegisterEmail:
		return e.handleRegisterEmail(sess, in)
	case StepRegisterUsername:
		return e.handleRegisterUsername(sess, in)
	case StepRegisterFirstName:
		return e.handleRegisterFirstName(sess, in)
	case StepRegisterLastName:
		return e.handleRegisterLastName(sess, in)
	case StepRegisterPassword:
		return e.handleRegisterPassword(ctx, sess, in)
	case StepRecipeName:
		return e.handleRecipeName(sess, in)
	case StepRecipeDescription:
		return e.handleRecipeDescription(sess, in)
	case StepCookingTime:
		return e.handleCookingTime(sess, in)
	case StepIngredientLetter:
		return e.handleIngredientLetter(ctx, sess, in)
	case StepIngredientBrowse:
		return e.handleIngredientBrowse(ctx, sess, in)
	case StepIngredientQuantity:
		return e.handleIngredientQuantity(sess, in)
	case StepIngredientMore:
		return e.handleIngredientMore(ctx, sess, in)
	case StepTagBrowse:
		return e.handleTagBrowse(ctx, sess, in)
	case StepImage:
		return e.handleImage(sess, in)
	case StepURL:
		return e.handleURL(sess, in)
	case StepConfirm:
		return e.handleConfirm(ctx, sess, in)
	}

	e.logger.ErrorContext(ctx, "session in unknown step", slog.String("step", sess.Step))
	e.end(sess)
	return text("Something went wrong; the operation was reset.")
}

// end releases the session's draft and browse cursor and removes the entry.
func (e *Engine) end(sess *session.Session) {
	sess.Step = StepIdle
	sess.Draft = nil
	sess.Browser = nil
	e.sessions.Remove(sess.Key)
}

// ---- auth sub-machine ----

func (e *Engine) startAuth(sess *session.Session) Reply {
	sess.Step = StepAuthChoice
	return keyboard(
		"Hi! I am the recipe bot. Choose how to continue:\n\n"+
			"• Log in (email + password)\n"+
			"• Register\n"+
			"• Continue as guest (browsing only; recipes cannot be created under your account)",
		authKeyboard())
}

func (e *Engine) handleAuthChoice(ctx context.Context, sess *session.Session, in Input) Reply {
	if in.Action == nil {
		return keyboard("Please choose one of the options.", authKeyboard())
	}

	switch in.Action.Kind {
	case ActionAuthLogin:
		sess.Step = StepLoginEmail
		return text("Enter your email:")
	case ActionAuthRegister:
		sess.Step = StepRegisterEmail
		return text("Registration. Enter your email:")
	case ActionAuthAnonymous:
		if err := e.credentials.Clear(ctx, sess.Key.UserID); err != nil {
			e.logger.ErrorContext(ctx, "clearing credential", slog.Any("error", err))
		}
		e.end(sess)
		return text("Continuing as guest. Creating recipes under an account requires logging in.")
	}
	return keyboard("Please choose one of the options.", authKeyboard())
}

func (e *Engine) handleLoginEmail(sess *session.Session, in Input) Reply {
	email, err := validate.NonEmpty(in.Text)
	if err != nil {
		return text("Email must not be empty. Enter your email:")
	}
	sess.AuthEmail = email
	sess.Step = StepLoginPassword
	return text("Enter your password:")
}

func (e *Engine) handleLoginPassword(ctx context.Context, sess *session.Session, in Input) Reply {
	pass, err := validate.NonEmpty(in.Text)
	if err != nil {
		return text("Password must not be empty. Enter your password:")
	}

	token, err := e.auth.Login(ctx, sess.AuthEmail, pass)
	if err != nil {
		sess.Step = StepLoginEmail
		return text("Login failed: " + collaboratorMessage(err) + "\nEnter your email:")
	}

	if err := e.credentials.Save(ctx, sess.Key.UserID, token); err != nil {
		e.logger.ErrorContext(ctx, "saving credential", slog.Any("error", err))
		e.end(sess)
		return text("Logged in, but the token could not be stored. Please try again.")
	}
	e.end(sess)
	return text("Logged in successfully.")
}

func (e *Engine) handleRegisterEmail(sess *session.Session, in Input) Reply {
	email, err := validate.NonEmpty(in.Text)
	if err != nil {
		return text("Email must not be empty. Enter your email:")
	}
	sess.RegisterEmail = email
	sess.Step = StepRegisterUsername
	return text("Choose a username:")
}

func (e *Engine) handleRegisterUsername(sess *session.Session, in Input) Reply {
	username, err := validate.NonEmpty(in.Text)
	if err != nil {
		return text("Username must not be empty. Choose a username:")
	}
	sess.RegisterUser = username
	sess.Step = StepRegisterFirstName
	return text("First name:")
}

func (e *Engine) handleRegisterFirstName(sess *session.Session, in Input) Reply {
	first, err := validate.NonEmpty(in.Text)
	if err != nil {
		return text("First name must not be empty. First name:")
	}
	sess.RegisterFirst = first
	sess.Step = StepRegisterLastName
	return text("Last name:")
}

func (e *Engine) handleRegisterLastName(sess *session.Session, in Input) Reply {
	last, err := validate.NonEmpty(in.Text)
	if err != nil {
		return text("Last name must not be empty. Last name:")
	}
	sess.RegisterLast = last
	sess.Step = StepRegisterPassword
	return text("Password:")
}

func (e *Engine) handleRegisterPassword(ctx context.Context, sess *session.Session, in Input) Reply {
	pass, err := validate.NonEmpty(in.Text)
	if err != nil {
		return text("Password must not be empty. Password:")
	}
	if err := password.Validate(pass); err != nil {
		return text("Weak password: " + err.Error() + "\nChoose another password:")
	}

	token, err := e.auth.Register(ctx, collab.RegisterParams{
		Email:     sess.RegisterEmail,
		Username:  sess.RegisterUser,
		FirstName: sess.RegisterFirst,
		LastName:  sess.RegisterLast,
		Password:  pass,
	})
	if err != nil {
		sess.Step = StepRegisterEmail
		return text("Registration failed: " + collaboratorMessage(err) + "\nEnter your email:")
	}

	if err := e.credentials.Save(ctx, sess.Key.UserID, token); err != nil {
		e.logger.ErrorContext(ctx, "saving credential", slog.Any("error", err))
		e.end(sess)
		return text("Registered, but the token could not be stored. Please log in manually.")
	}
	e.end(sess)
	return text("Registered and logged in successfully.")
}

// ---- recipe-creation flow ----

func (e *Engine) startRecipe(sess *session.Session) Reply {
	sess.Draft = &recipe.Draft{}
	sess.Browser = nil
	sess.Step = StepRecipeName
	return text("Creating a recipe. Enter the name:")
}

func (e *Engine) handleRecipeName(sess *session.Session, in Input) Reply {
	name, err := validate.NonEmpty(in.Text)
	if err != nil {
		return text("The name must not be empty. Enter the name:")
	}
	sess.Draft.Name = name
	sess.Step = StepRecipeDescription
	return text("Enter a short description:")
}

func (e *Engine) handleRecipeDescription(sess *session.Session, in Input) Reply {
	desc, err := validate.NonEmpty(in.Text)
	if err != nil {
		return text("The description must not be empty. Enter a description:")
	}
	sess.Draft.Description = desc
	sess.Step = StepCookingTime
	return text("Cooking time in minutes (whole number):")
}

func (e *Engine) handleCookingTime(sess *session.Session, in Input) Reply {
	minutes, err := validate.Integer(in.Text)
	if err != nil {
		return text("Cooking time must be a whole number ≥ 1. Try again:")
	}
	sess.Draft.CookingTime = minutes
	sess.Step = StepIngredientLetter
	return keyboard("Pick the first letter of an ingredient.", letterKeyboard())
}

func (e *Engine) ingredientFetcher() browse.Fetcher {
	return func(ctx context.Context, filter string, page int) (browse.Page, error) {
		return e.catalog.Ingredients(ctx, filter, page)
	}
}

func (e *Engine) tagFetcher() browse.Fetcher {
	return func(ctx context.Context, _ string, page int) (browse.Page, error) {
		return e.catalog.Tags(ctx, page)
	}
}

func backToLettersButton() Button {
	return button("Back to letters", Action{Kind: ActionAddMore})
}

func (e *Engine) handleIngredientLetter(ctx context.Context, sess *session.Session, in Input) Reply {
	if in.Action == nil {
		return keyboard("Pick a letter.", letterKeyboard())
	}

	switch in.Action.Kind {
	case ActionPickLetter:
		return e.openIngredients(ctx, sess, in.Action.Letter)
	case ActionIngredientDone:
		return e.finishIngredients(ctx, sess)
	}
	return keyboard("Pick a letter.", letterKeyboard())
}

// openIngredients opens the ingredient list for a letter. An empty result
// keeps the conversation at the letter picker so another letter can be
// chosen immediately.
func (e *Engine) openIngredients(ctx context.Context, sess *session.Session, letter string) Reply {
	br, err := browse.Open(ctx, e.ingredientFetcher(), letter)
	if err != nil {
		e.logger.ErrorContext(ctx, "opening ingredient list", slog.Any("error", err))
		return keyboard("Failed to fetch ingredients: "+collaboratorMessage(err)+"\nPick a letter.", letterKeyboard())
	}
	if len(br.Page().Items) == 0 {
		sess.Browser = nil
		sess.Step = StepIngredientLetter
		return keyboard("No ingredients start with that letter. Pick another one.", letterKeyboard())
	}
	sess.Browser = br
	sess.Step = StepIngredientBrowse
	return e.renderIngredientPage(br.Page())
}

func (e *Engine) renderIngredientPage(page browse.Page) Reply {
	if len(page.Items) == 0 {
		return keyboard("No ingredients start with that letter. Pick another one.", letterKeyboard())
	}
	kb := pageKeyboard(page, ActionSelectItem, ActionIngredientPage, backToLettersButton())
	return keyboard("Choose an ingredient:", kb)
}

func (e *Engine) handleIngredientBrowse(ctx context.Context, sess *session.Session, in Input) Reply {
	if in.Action == nil {
		return e.renderIngredientPage(sess.Browser.Page())
	}

	switch in.Action.Kind {
	case ActionPickLetter:
		return e.openIngredients(ctx, sess, in.Action.Letter)
	case ActionIngredientPage:
		page, err := sess.Browser.Go(ctx, in.Action.Dir)
		if err != nil {
			e.logger.ErrorContext(ctx, "paging ingredients", slog.Any("error", err))
			r := e.renderIngredientPage(sess.Browser.Page())
			r.Messages = append([]Message{{Text: "Failed to fetch the page: " + collaboratorMessage(err)}}, r.Messages...)
			return r
		}
		return e.renderIngredientPage(page)
	case ActionSelectItem:
		item, ok := sess.Browser.Find(in.Action.ID)
		if !ok {
			return e.renderIngredientPage(sess.Browser.Page())
		}
		sess.SelectedIngredient = recipe.Ingredient{ID: item.ID, Name: item.Label}
		sess.Browser = nil
		sess.Step = StepIngredientQuantity
		return text(fmt.Sprintf("Enter the amount of %s (e.g. 3 or 0.5):", item.Label))
	case ActionAddMore:
		sess.Browser = nil
		sess.Step = StepIngredientLetter
		return keyboard("Pick a letter.", letterKeyboard())
	case ActionIngredientDone:
		return e.finishIngredients(ctx, sess)
	}
	return e.renderIngredientPage(sess.Browser.Page())
}

func (e *Engine) handleIngredientQuantity(sess *session.Session, in Input) Reply {
	amount, err := validate.Amount(in.Text)
	if err != nil {
		return text("The amount must be a positive number (e.g. 3 or 0.5). Try again:")
	}
	sess.Draft.AddIngredient(sess.SelectedIngredient.ID, amount)
	sess.SelectedIngredient = recipe.Ingredient{}
	sess.Step = StepIngredientMore
	return keyboard("Ingredient added.", moreOrDoneKeyboard())
}

func (e *Engine) handleIngredientMore(ctx context.Context, sess *session.Session, in Input) Reply {
	if in.Action == nil {
		return keyboard("Add another ingredient, or continue to tags.", moreOrDoneKeyboard())
	}

	switch in.Action.Kind {
	case ActionAddMore:
		sess.Browser = nil
		sess.Step = StepIngredientLetter
		return keyboard("Pick a letter.", letterKeyboard())
	case ActionIngredientDone:
		return e.finishIngredients(ctx, sess)
	}
	return keyboard("Add another ingredient, or continue to tags.", moreOrDoneKeyboard())
}

// finishIngredients leaves the ingredient loop and opens the tag browser.
// In strict deployments the loop cannot be left with an empty ingredient
// list.
func (e *Engine) finishIngredients(ctx context.Context, sess *session.Session) Reply {
	if e.strict && len(sess.Draft.Ingredients) == 0 {
		return keyboard("Add at least one ingredient first. Pick a letter.", letterKeyboard())
	}

	br, err := browse.Open(ctx, e.tagFetcher(), "")
	if err != nil {
		e.logger.ErrorContext(ctx, "opening tag list", slog.Any("error", err))
		return text("Failed to fetch tags: " + collaboratorMessage(err) + "\nTry \"done\" again.")
	}
	sess.Browser = br
	sess.Step = StepTagBrowse
	return e.renderTagPage(sess, br.Page())
}

func (e *Engine) renderTagPage(sess *session.Session, page browse.Page) Reply {
	done := button("Done (continue to photo)", Action{Kind: ActionTagsDone})
	kb := pageKeyboard(page, ActionToggleTag, ActionTagPage, done)
	label := "Choose tags (more than one is fine):"
	if n := len(sess.Draft.Tags()); n > 0 {
		label = fmt.Sprintf("Choose tags (%d selected):", n)
	}
	return keyboard(label, kb)
}

func (e *Engine) handleTagBrowse(ctx context.Context, sess *session.Session, in Input) Reply {
	if in.Action == nil {
		return e.renderTagPage(sess, sess.Browser.Page())
	}

	switch in.Action.Kind {
	case ActionTagPage:
		page, err := sess.Browser.Go(ctx, in.Action.Dir)
		if err != nil {
			e.logger.ErrorContext(ctx, "paging tags", slog.Any("error", err))
			r := e.renderTagPage(sess, sess.Browser.Page())
			r.Messages = append([]Message{{Text: "Failed to fetch the page: " + collaboratorMessage(err)}}, r.Messages...)
			return r
		}
		return e.renderTagPage(sess, page)
	case ActionToggleTag:
		item, ok := sess.Browser.Find(in.Action.ID)
		if !ok {
			return e.renderTagPage(sess, sess.Browser.Page())
		}
		if sess.Draft.ToggleTag(recipe.Tag{ID: item.ID, Name: item.Label}) {
			return text("Tag added.")
		}
		return text("Tag removed.")
	case ActionTagsDone:
		if len(sess.Draft.Tags()) == 0 {
			r := e.renderTagPage(sess, sess.Browser.Page())
			r.Messages = append([]Message{{Text: "Select at least one tag first."}}, r.Messages...)
			return r
		}
		sess.Browser = nil
		sess.Step = StepImage
		return keyboard("Send a recipe photo (or press Skip):", skipKeyboard(ActionSkipImage))
	}
	return e.renderTagPage(sess, sess.Browser.Page())
}

func (e *Engine) handleImage(sess *session.Session, in Input) Reply {
	switch {
	case in.Action != nil && in.Action.Kind == ActionSkipImage:
		sess.Draft.ImageHandle = ""
	case in.PhotoHandle != "":
		sess.Draft.ImageHandle = in.PhotoHandle
	default:
		return keyboard("Expected a photo. Send one or press Skip.", skipKeyboard(ActionSkipImage))
	}

	sess.Step = StepURL
	return keyboard("Add a link to the source (or press Skip):", skipKeyboard(ActionSkipURL))
}

func (e *Engine) handleURL(sess *session.Session, in Input) Reply {
	switch {
	case in.Action != nil && in.Action.Kind == ActionSkipURL:
		sess.Draft.SourceURL = ""
	default:
		url, err := validate.NonEmpty(in.Text)
		if err != nil {
			return keyboard("Send a link or press Skip.", skipKeyboard(ActionSkipURL))
		}
		sess.Draft.SourceURL = url
	}

	// The confirm step must not be reachable with an incomplete draft.
	if err := sess.Draft.Complete(); err != nil {
		e.logger.Error("draft incomplete at confirm gate", slog.Any("error", err))
		e.end(sess)
		return text("The draft is incomplete and was discarded. Please start over.")
	}

	sess.Step = StepConfirm
	return keyboard(summary(sess.Draft), confirmKeyboard())
}

func (e *Engine) handleConfirm(ctx context.Context, sess *session.Session, in Input) Reply {
	if in.Action == nil || in.Action.Kind != ActionConfirm {
		return keyboard(summary(sess.Draft), confirmKeyboard())
	}

	result, err := e.submitter.Submit(ctx, sess.Draft, sess.Key.UserID)
	if err != nil {
		e.logger.ErrorContext(ctx, "submitting recipe", slog.Any("error", err))
		return keyboard("Internal error while submitting; please try again.", confirmKeyboard())
	}

	e.end(sess)
	switch result.Outcome {
	case submit.Success:
		return text("Recipe created successfully ✅")
	case submit.Unauthenticated:
		return text("You are not logged in. Creating a recipe under an account requires logging in first (use the start menu).")
	case submit.ValidationFailed:
		return text("The site rejected the recipe:\n" + result.Details)
	default:
		return text("Could not reach the site: " + result.Details)
	}
}

// ---- list views ----

func (e *Engine) viewList(ctx context.Context) Reply {
	summaries, err := e.catalog.Recipes(ctx, 1)
	if err != nil {
		e.logger.ErrorContext(ctx, "listing recipes", slog.Any("error", err))
		return text("Failed to fetch recipes: " + collaboratorMessage(err))
	}
	if len(summaries) == 0 {
		return text("No recipes yet.")
	}
	return text(renderSummaries(summaries))
}

func (e *Engine) viewFavorites(ctx context.Context, user int64) Reply {
	token, ok, err := e.credentials.Load(ctx, user)
	if err != nil {
		e.logger.ErrorContext(ctx, "loading credential", slog.Any("error", err))
		return text("Internal error; please try again.")
	}
	if !ok {
		return text("Log in first to see your favorites.")
	}

	summaries, err := e.catalog.Favorites(ctx, token, 1)
	if err != nil {
		e.logger.ErrorContext(ctx, "listing favorites", slog.Any("error", err))
		return text("Failed to fetch favorites: " + collaboratorMessage(err))
	}
	if len(summaries) == 0 {
		return text("No favorites yet.")
	}
	return text(renderSummaries(summaries))
}

func renderSummaries(summaries []recipe.Summary) string {
	lines := make([]string, 0, len(summaries))
	for _, s := range summaries {
		lines = append(lines, fmt.Sprintf("%d: %s (%d min)", s.ID, s.Name, s.CookingTime))
	}
	return strings.Join(lines, "\n")
}

// collaboratorMessage strips the upstream sentinel prefix so the user sees
// the rendered collaborator payload, not the wrapping chain.
func collaboratorMessage(err error) string {
	msg := err.Error()
	msg = strings.TrimPrefix(msg, collab.ErrUpstream.Error()+": ")
	return msg
}
