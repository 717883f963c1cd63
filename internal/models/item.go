package models

import "time"

type Item struct {
	ID          int64     `json:"id" yaml:"id"`
	OwnerID     int64     `json:"owner_id" yaml:"owner_id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Available   bool      `json:"available" yaml:"available"`
	RequestID   *int64    `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// ItemPatch carries optional fields for a partial item update.
// Nil means "leave unchanged".
type ItemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// BookingRef is the short booking form embedded into item views.
type BookingRef struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"booker_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// ItemView is an item enriched with booking projection and comments.
// LastBooking and NextBooking are populated only for the item's owner.
type ItemView struct {
	Item
	LastBooking *BookingRef `json:"last_booking,omitempty"`
	NextBooking *BookingRef `json:"next_booking,omitempty"`
	Comments    []Comment   `json:"comments"`
}
