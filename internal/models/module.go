package models

import "time"

// Module is owned by exactly one account. The owner is set at creation
// and never changes; there is no transfer operation.
type Module struct {
	ID          int64     `json:"id"`
	Number      int       `json:"number"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     int64     `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
