package models

import "time"

type Category struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CategoryCreate struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// CategoryUpdate holds the fields of a partial category update.
type CategoryUpdate struct {
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
}

// Apply copies every set field onto c.
func (u CategoryUpdate) Apply(c *Category) {
	if u.Name.Set {
		c.Name = u.Name.Value
	}
	if u.Description.Set {
		c.Description = u.Description.Ptr()
	}
}
