package web

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})
	return &buf
}

func TestLogger_BookingContext(t *testing.T) {
	h := NewHandler(newFakeService(), "", testSecret)
	cookie := authCookie(t, "1000")
	buf := captureLog(t)

	body := `{
		"customer_name": "Asha Verma",
		"unit_number": "T2-1104",
		"booking_date": "2026-04-12",
		"financials": {"BSP":"100000","GSTPercentage":"10"},
		"payments": {"received":[{"amount":"25000","date":"2026-04-12","status":"paid","mode":"cash"}],"pending":[]}
	}`
	if rec := do(t, h, http.MethodPost, "/api/companies/1000/bookings", body, cookie); rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rec.Code)
	}
	line := buf.String()
	for _, want := range []string{"POST /api/companies/{code}/bookings", " 201 ", "company=1000", "booking=BK-2026-00001"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}

	buf.Reset()
	do(t, h, http.MethodGet, "/api/companies/1000/bookings/BK-2026-00009", "", cookie)
	if line := buf.String(); !strings.Contains(line, "404") || !strings.Contains(line, "booking=BK-2026-00009") {
		t.Errorf("unexpected not-found log line %q", line)
	}

	buf.Reset()
	do(t, h, http.MethodPost, "/api/calculator/recompute", `{"BSP":"-1","GSTPercentage":"150"}`, cookie)
	if line := buf.String(); !strings.Contains(line, "422") || !strings.Contains(line, "invalid_fields=2") {
		t.Errorf("unexpected validation log line %q", line)
	}
}

func TestCORS(t *testing.T) {
	h := CORS("https://crm.example.com, https://admin.example.com")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/companies/1000/bookings", nil)
	req.Header.Set("Origin", "https://crm.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight: expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://crm.example.com" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Idempotency-Key") {
		t.Errorf("Allow-Headers = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Expose-Headers"); !strings.Contains(got, "Content-Disposition") {
		t.Errorf("Expose-Headers = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unlisted origin got Allow-Origin %q", got)
	}
}
