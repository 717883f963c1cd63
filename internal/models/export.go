package models

import "time"

// BookingExportRow is one line of the bookings report, with names
// already resolved for human consumption.
type BookingExportRow struct {
	BookingID  int64
	ItemName   string
	OwnerName  string
	BookerName string
	Start      time.Time
	End        time.Time
	Status     BookingStatus
}

// ExportRequest asks the export worker for a bookings report covering
// the given period.
type ExportRequest struct {
	From        time.Time
	To          time.Time
	RequestedBy int64
}
