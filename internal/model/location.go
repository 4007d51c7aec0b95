package model

import "time"

// Location is a physical site where registration, measurement, collection
// or testing happens. Locations are never updated or deleted.
type Location struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address,omitempty"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CreateLocationRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// Seed values for the location created on first initialization, so that
// patient registration is always possible.
const (
	SeedLocationName    = "Main Hospital"
	SeedLocationAddress = "123 Healthcare Street, Medical City"
	SeedLocationPhone   = "+1234567890"
)
