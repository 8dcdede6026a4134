package engine

// Step identifies which handler owns the next input of a conversation.
// Exactly one step is active per session at a time.
type Step = string

const (
	// StepIdle means no guided flow is active for the session.
	StepIdle Step = ""

	// Auth sub-machine.
	StepAuthChoice        Step = "auth_choice"
	StepLoginEmail        Step = "login_email"
	StepLoginPassword     Step = "login_password"
	StepRegisterEmail     Step = "register_email"
	StepRegisterUsername  Step = "register_username"
	StepRegisterFirstName Step = "register_first_name"
	StepRegisterLastName  Step = "register_last_name"
	StepRegisterPassword  Step = "register_password"

	// Recipe-creation flow.
	StepRecipeName         Step = "recipe_name"
	StepRecipeDescription  Step = "recipe_description"
	StepCookingTime        Step = "cooking_time"
	StepIngredientLetter   Step = "ingredient_letter"
	StepIngredientBrowse   Step = "ingredient_browse"
	StepIngredientQuantity Step = "ingredient_quantity"
	StepIngredientMore     Step = "ingredient_more"
	StepTagBrowse          Step = "tag_browse"
	StepImage              Step = "image"
	StepURL                Step = "url"
	StepConfirm            Step = "confirm"
)
