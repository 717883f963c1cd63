package api

import (
	"net/http"
	"strconv"
	"time"

	"lendit/internal/models"
)

type bookingRequest struct {
	ItemID int64     `json:"item_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	bookerID, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var body bookingRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.ItemID <= 0 || body.Start.IsZero() || body.End.IsZero() {
		writeError(w, http.StatusBadRequest, "item_id, start and end are required")
		return
	}

	booking, err := s.bookings.Create(r.Context(), body.ItemID, body.Start, body.End, bookerID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleDecideBooking(w http.ResponseWriter, r *http.Request) {
	actorID, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "approved query parameter is required")
		return
	}

	booking, err := s.bookings.Decide(r.Context(), bookingID, actorID, approved)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	actorID, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bookingID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := s.bookings.GetByID(r.Context(), bookingID, actorID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

type exportBookingsRequest struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	actorID, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "exports are disabled")
		return
	}

	var body exportBookingsRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.From.IsZero() || body.To.IsZero() {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}
	if !body.From.Before(body.To) {
		writeError(w, http.StatusBadRequest, "from must be before to")
		return
	}

	req := models.ExportRequest{From: body.From, To: body.To, RequestedBy: actorID}
	if err := s.exporter.Enqueue(req); err != nil {
		writeError(w, http.StatusTooManyRequests, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, models.RoleBooker)
}

func (s *HTTPServer) handleListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, models.RoleOwner)
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request, role models.Role) {
	actorID, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bucket, err := models.ParseBucket(r.URL.Query().Get("state"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, size, err := pagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, err := s.bookings.List(r.Context(), actorID, role, bucket, from, size)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}
