package models

import "time"

// BookingStatus is the lifecycle state of a booking. A booking starts
// as WAITING and moves exactly once to APPROVED or REJECTED.
type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

// Decided reports whether the status is terminal.
func (s BookingStatus) Decided() bool {
	return s == StatusApproved || s == StatusRejected
}

// Booking reserves one item for one booker over the inclusive
// interval [Start, End].
type Booking struct {
	ID        int64         `json:"id"`
	ItemID    int64         `json:"item_id"`
	BookerID  int64         `json:"booker_id"`
	Start     time.Time     `json:"start"`
	End       time.Time     `json:"end"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Ref returns the short form used by item projections.
func (b *Booking) Ref() *BookingRef {
	return &BookingRef{ID: b.ID, BookerID: b.BookerID, Start: b.Start, End: b.End}
}
