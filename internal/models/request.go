package models

import "time"

// ItemRequest is a wish for an item that does not exist yet. Items may
// be created in response to it, which links them via Item.RequestID.
type ItemRequest struct {
	ID          int64     `json:"id"`
	RequesterID int64     `json:"requester_id"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
}

// RequestView is a request together with the items offered for it.
type RequestView struct {
	ItemRequest
	Items []Item `json:"items"`
}
