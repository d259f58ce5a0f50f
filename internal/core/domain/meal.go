package domain

import "time"

// Meal is a food intake record owned by exactly one user. Ownership is a
// reference by user name; deleting the owner cascades to its meals.
type Meal struct {
	ID       string    `json:"id"`
	UserName string    `json:"user_name"`
	Text     string    `json:"text"`
	Calories int       `json:"calories"`
	AteAt    time.Time `json:"ate_at"`
}
