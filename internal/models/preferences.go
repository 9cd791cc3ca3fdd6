package models

// Preferences — пожелания гостя по меню.
type Preferences struct {
	FoodChoice     *string  `json:"food_choice"`
	AlcoholChoices []string `json:"alcohol_choices"`
	Allergies      []string `json:"allergies"`
}
