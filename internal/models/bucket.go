package models

import (
	"fmt"
	"strings"
)

// Bucket names a temporal/status slice of a booking listing.
type Bucket int

const (
	BucketAll Bucket = iota
	BucketCurrent
	BucketPast
	BucketFuture
	BucketWaiting
	BucketRejected
)

// ParseBucket translates the textual state parameter into a Bucket.
// Matching is case-insensitive; an empty string means ALL.
func ParseBucket(s string) (Bucket, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ALL":
		return BucketAll, nil
	case "CURRENT":
		return BucketCurrent, nil
	case "PAST":
		return BucketPast, nil
	case "FUTURE":
		return BucketFuture, nil
	case "WAITING":
		return BucketWaiting, nil
	case "REJECTED":
		return BucketRejected, nil
	default:
		return 0, fmt.Errorf("unknown state: %s", s)
	}
}

func (b Bucket) String() string {
	switch b {
	case BucketAll:
		return "ALL"
	case BucketCurrent:
		return "CURRENT"
	case BucketPast:
		return "PAST"
	case BucketFuture:
		return "FUTURE"
	case BucketWaiting:
		return "WAITING"
	case BucketRejected:
		return "REJECTED"
	default:
		return fmt.Sprintf("Bucket(%d)", int(b))
	}
}

// Role selects whose bookings a listing covers: the requesting user as
// booker, or as owner of the booked items.
type Role int

const (
	RoleBooker Role = iota
	RoleOwner
)

func (r Role) String() string {
	if r == RoleOwner {
		return "OWNER"
	}
	return "BOOKER"
}
