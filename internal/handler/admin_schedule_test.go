package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// postSchedule runs CreateSchedule against a request body and returns
// the recorded response.  Validation rejects long before any store
// access, so the handler needs no repositories here.
func postSchedule(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/schedules", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(1))
	h := &AdminHandler{Log: zap.NewNop()}
	if err := h.CreateSchedule(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestCreateSchedule_RejectsOvernightShift(t *testing.T) {
	// A 22:00-06:00 duty spans two calendar dates; it is entered as
	// one schedule per date so the day-keyed rules stay unambiguous.
	rec := postSchedule(t, `{"date":"2026-09-10","shift_start":"22:00","shift_end":"06:00","location":"Ward 3"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a shift ending before it starts, got %d", rec.Code)
	}
}

func TestCreateSchedule_RejectsZeroLengthShift(t *testing.T) {
	rec := postSchedule(t, `{"date":"2026-09-10","shift_start":"08:00","shift_end":"08:00","location":"Ward 3"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a zero-length shift, got %d", rec.Code)
	}
}

func TestCreateSchedule_ValidatesFields(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad date", `{"date":"10-09-2026","shift_start":"08:00","shift_end":"12:00","location":"Ward 3"}`},
		{"bad start time", `{"date":"2026-09-10","shift_start":"8am","shift_end":"12:00","location":"Ward 3"}`},
		{"missing location", `{"date":"2026-09-10","shift_start":"08:00","shift_end":"12:00"}`},
		{"negative capacity", `{"date":"2026-09-10","shift_start":"08:00","shift_end":"12:00","location":"Ward 3","max_students":-1}`},
	}
	for _, tc := range cases {
		if rec := postSchedule(t, tc.body); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.name, rec.Code)
		}
	}
}
