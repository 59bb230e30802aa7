package models

import "time"

// Project is a shared pixel-art outline that users fill in together.
type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Outline   string    `json:"outline"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Contribution is one filled cell on a project outline. Contributions
// are planning-grid fills and do not charge coding-time budget.
type Contribution struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Color     string    `json:"color"`
	FilledBy  string    `json:"filled_by"`
	FilledAt  time.Time `json:"filled_at"`
}
