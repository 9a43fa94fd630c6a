package web

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"booking-finance/internal/adapters/xlsx"
	"booking-finance/internal/app"
	"booking-finance/internal/core"

	"github.com/go-chi/chi/v5"
)

// bookingBody is the JSON shape of a booking submission. The draft endpoint
// returns the same shape so a reviewed draft can be posted back unchanged.
type bookingBody struct {
	IdempotencyKey string                    `json:"idempotency_key,omitempty"`
	CustomerName   string                    `json:"customer_name"`
	ProjectName    string                    `json:"project_name"`
	UnitNumber     string                    `json:"unit_number"`
	BookingDate    string                    `json:"booking_date"`
	Remarks        string                    `json:"remarks"`
	Financials     core.DealFinancialsInputs `json:"financials"`
	Payments       core.PaymentLists         `json:"payments"`
}

func bookingBodyFrom(in core.BookingInput) bookingBody {
	return bookingBody{
		IdempotencyKey: in.IdempotencyKey,
		CustomerName:   in.CustomerName,
		ProjectName:    in.ProjectName,
		UnitNumber:     in.UnitNumber,
		BookingDate:    in.BookingDate,
		Remarks:        in.Remarks,
		Financials:     in.Financials,
		Payments:       in.Payments,
	}
}

// apiListBookings handles GET /api/companies/{code}/bookings.
func (h *Handler) apiListBookings(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListBookings(r.Context(), companyCode(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	bookings := result.Bookings
	if bookings == nil {
		bookings = []core.Booking{}
	}
	writeJSON(w, bookings)
}

// apiExportBookings handles GET /api/companies/{code}/bookings/export.xlsx.
func (h *Handler) apiExportBookings(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ExportBookings(r.Context(), companyCode(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := xlsx.WriteBookingRegister(&buf, result.Bookings); err != nil {
		log.Printf("[%s] export bookings: %v", requestIDFromContext(r.Context()), err)
		writeError(w, r, "failed to build workbook", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	fileName := fmt.Sprintf("bookings_%s_%s.xlsx", result.CompanyCode, time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", xlsx.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
	_, _ = w.Write(buf.Bytes())
}

// apiGetBooking handles GET /api/companies/{code}/bookings/{ref}.
// ref is either the numeric ID or the booking number.
func (h *Handler) apiGetBooking(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetBooking(r.Context(), chi.URLParam(r, "ref"), companyCode(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Booking)
}

// apiCreateBooking handles POST /api/companies/{code}/bookings.
// An Idempotency-Key header is used when the body carries no idempotency_key.
func (h *Handler) apiCreateBooking(w http.ResponseWriter, r *http.Request) {
	var body bookingBody
	if !decodeJSON(w, r, &body) {
		return
	}

	key := strings.TrimSpace(body.IdempotencyKey)
	if key == "" {
		key = strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	}

	result, err := h.svc.CreateBooking(r.Context(), app.CreateBookingRequest{
		CompanyCode:    companyCode(r),
		IdempotencyKey: key,
		CustomerName:   strings.TrimSpace(body.CustomerName),
		ProjectName:    strings.TrimSpace(body.ProjectName),
		UnitNumber:     strings.TrimSpace(body.UnitNumber),
		BookingDate:    strings.TrimSpace(body.BookingDate),
		Remarks:        body.Remarks,
		Financials:     body.Financials,
		Payments:       body.Payments,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	noteBooking(r, result.Booking.BookingNumber)
	writeJSONStatus(w, http.StatusCreated, result.Booking)
}

// apiUpdateFinancials handles PUT /api/companies/{code}/bookings/{ref}/financials.
// Body: the nine calculator inputs keyed as in the finance payload (BSP, GSTPercentage, ...).
func (h *Handler) apiUpdateFinancials(w http.ResponseWriter, r *http.Request) {
	var in core.DealFinancialsInputs
	if !decodeJSON(w, r, &in) {
		return
	}
	result, err := h.svc.UpdateBookingFinancials(r.Context(), app.UpdateFinancialsRequest{
		CompanyCode: companyCode(r),
		Ref:         chi.URLParam(r, "ref"),
		Financials:  in,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Booking)
}

// apiUpdatePayments handles PUT /api/companies/{code}/bookings/{ref}/payments.
// Body: { received: [...], pending: [...] }
func (h *Handler) apiUpdatePayments(w http.ResponseWriter, r *http.Request) {
	var lists core.PaymentLists
	if !decodeJSON(w, r, &lists) {
		return
	}
	result, err := h.svc.UpdateBookingPayments(r.Context(), app.UpdatePaymentsRequest{
		CompanyCode: companyCode(r),
		Ref:         chi.URLParam(r, "ref"),
		Payments:    lists,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Booking)
}

// apiDraftBooking handles POST /api/companies/{code}/bookings/draft.
// Body: { text }. Nothing is stored.
func (h *Handler) apiDraftBooking(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		writeError(w, r, "text is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.DraftBooking(r.Context(), body.Text, companyCode(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	type draftResponse struct {
		IsClarification bool                        `json:"is_clarification"`
		Clarification   string                      `json:"clarification,omitempty"`
		Booking         *bookingBody                `json:"booking,omitempty"`
		Derived         *core.DealFinancialsDerived `json:"derived,omitempty"`
		Confidence      float64                     `json:"confidence,omitempty"`
		Reasoning       string                      `json:"reasoning,omitempty"`
	}
	if result.IsClarification {
		writeJSON(w, draftResponse{IsClarification: true, Clarification: result.ClarificationMessage})
		return
	}
	booking := bookingBodyFrom(*result.Draft)
	writeJSON(w, draftResponse{
		Booking:    &booking,
		Derived:    &result.Derived,
		Confidence: result.Confidence,
		Reasoning:  result.Reasoning,
	})
}
