package web

import (
	"net/http"

	"booking-finance/internal/core"

	"github.com/shopspring/decimal"
)

// apiRecompute handles POST /api/calculator/recompute.
// Body: the calculator inputs; invalid or missing values count as zero.
func (h *Handler) apiRecompute(w http.ResponseWriter, r *http.Request) {
	var in core.DealFinancialsInputs
	if !decodeJSON(w, r, &in) {
		return
	}
	result, err := h.svc.RecomputeFinancials(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	type response struct {
		Inputs  core.DealFinancialsInputs  `json:"inputs"`
		Derived core.DealFinancialsDerived `json:"derived"`
	}
	writeJSON(w, response{Inputs: result.Inputs, Derived: result.Derived})
}

// apiSchedule handles POST /api/calculator/schedule.
// Body: { received: [...], pending: [...] }
func (h *Handler) apiSchedule(w http.ResponseWriter, r *http.Request) {
	var lists core.PaymentLists
	if !decodeJSON(w, r, &lists) {
		return
	}
	result, err := h.svc.BuildSchedule(r.Context(), lists)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	type response struct {
		PaymentDetails []core.PersistedPayment `json:"paymentDetails"`
		TotalReceived  decimal.Decimal         `json:"totalReceived"`
	}
	writeJSON(w, response{PaymentDetails: result.PaymentDetails, TotalReceived: result.TotalReceived})
}
