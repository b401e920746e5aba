package domain

import "time"

// Project is owned by external CRUD glue; this core reads it only for
// authorization checks and chat context.
type Project struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
