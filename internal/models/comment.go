package models

import "time"

// Comment is a free-text review left on an item by a user who has a
// completed booking of it. AuthorName is resolved at read time.
type Comment struct {
	ID         int64     `json:"id"`
	ItemID     int64     `json:"item_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	Created    time.Time `json:"created"`
}
