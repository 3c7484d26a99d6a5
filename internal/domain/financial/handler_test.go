package financial

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beautydesk/beautydesk/internal/platform/db"
)

func newTestHandler() (*Handler, *mockRecordRepo, *echo.Echo) {
	svc, records, _ := newTestService()
	return NewHandler(svc), records, echo.New()
}

func tenantRequest(method, target, body string, companyID uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return req.WithContext(db.WithTenant(req.Context(), companyID))
}

func TestHandler_CreateRecord(t *testing.T) {
	h, _, e := newTestHandler()
	rec := httptest.NewRecorder()
	body := `{"type":"expense","category":"fixed_cost","description":"Rent","value":"1200.00","date":"2024-05-01"}`
	c := e.NewContext(tenantRequest(http.MethodPost, "/", body, uuid.New()), rec)

	if err := h.CreateRecord(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"value":"1200.00"`) {
		t.Errorf("expected value as a decimal string, got %s", rec.Body.String())
	}
}

func TestHandler_CreateRecord_InvalidDate(t *testing.T) {
	h, _, e := newTestHandler()
	body := `{"type":"expense","category":"fixed_cost","value":"10.00","date":"01/05/2024"}`
	c := e.NewContext(tenantRequest(http.MethodPost, "/", body, uuid.New()), httptest.NewRecorder())

	err := h.CreateRecord(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if !strings.Contains(httpErr.Message.(string), "invalid date format") {
		t.Errorf("unexpected message %v", httpErr.Message)
	}
}

func TestHandler_CreateRecord_AppointmentCategory(t *testing.T) {
	h, _, e := newTestHandler()
	body := `{"type":"income","category":"appointment","value":"10.00","date":"2024-05-01"}`
	c := e.NewContext(tenantRequest(http.MethodPost, "/", body, uuid.New()), httptest.NewRecorder())

	err := h.CreateRecord(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_Summary(t *testing.T) {
	h, records, e := newTestHandler()
	companyID := uuid.New()
	seedAppointmentRecord(records, companyID, "19.90", day(2))
	seedAppointmentRecord(records, companyID, "35.50", day(30))

	rec := httptest.NewRecorder()
	c := e.NewContext(tenantRequest(http.MethodGet, "/?start=2024-05-01&end=2024-05-31", "", companyID), rec)
	if err := h.Summary(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got map[string]string
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got["income"] != "55.40" || got["expense"] != "0.00" || got["balance"] != "55.40" {
		t.Errorf("unexpected summary %v", got)
	}
}

func TestHandler_Export(t *testing.T) {
	h, records, e := newTestHandler()
	companyID := uuid.New()
	seedAppointmentRecord(records, companyID, "30.00", day(2))

	rec := httptest.NewRecorder()
	c := e.NewContext(tenantRequest(http.MethodGet, "/", "", companyID), rec)
	if err := h.Export(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != XLSXContentType {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "financial-records-20240515.xlsx") {
		t.Errorf("unexpected content disposition %q", cd)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected a workbook body")
	}
}

func TestHandler_CreateGoal_EndOfDay(t *testing.T) {
	h, _, e := newTestHandler()
	rec := httptest.NewRecorder()
	body := `{"target":"1000.00","period":"monthly","startDate":"2024-05-01","endDate":"2024-05-31"}`
	c := e.NewContext(tenantRequest(http.MethodPost, "/", body, uuid.New()), rec)

	if err := h.CreateGoal(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Goal
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.EndDate.Hour() != 23 || got.EndDate.Minute() != 59 {
		t.Errorf("expected date-only end widened to end of day, got %v", got.EndDate)
	}
}

func TestHandler_GetGoal_NotFound(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(tenantRequest(http.MethodGet, "/", "", uuid.New()), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.GetGoal(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}
