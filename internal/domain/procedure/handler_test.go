package procedure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beautydesk/beautydesk/internal/platform/db"
	"github.com/beautydesk/beautydesk/pkg/money"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _ := newTestService()
	return NewHandler(svc), echo.New()
}

func tenantRequest(method, body string, companyID uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/", nil)
	} else {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return req.WithContext(db.WithTenant(req.Context(), companyID))
}

func TestHandler_CreateProcedure(t *testing.T) {
	h, e := newTestHandler()
	companyID := uuid.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(tenantRequest(http.MethodPost, `{"name":"Corte","price":"19.9"}`, companyID), rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"price":"19.90"`) {
		t.Errorf("expected price rendered as a two-decimal string, got %s", rec.Body.String())
	}
}

func TestHandler_CreateProcedure_NumericPrice(t *testing.T) {
	h, e := newTestHandler()
	rec := httptest.NewRecorder()
	c := e.NewContext(tenantRequest(http.MethodPost, `{"name":"Corte","price":35.5}`, uuid.New()), rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Procedure
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Price != money.MustParse("35.50") {
		t.Errorf("expected 35.50, got %s", got.Price)
	}
}

func TestHandler_CreateProcedure_BadPrice(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing price", `{"name":"Corte"}`},
		{"three decimals", `{"name":"Corte","price":"1.999"}`},
		{"not a number", `{"name":"Corte","price":"abc"}`},
		{"negative", `{"name":"Corte","price":"-5.00"}`},
		{"above storage limit", `{"name":"Corte","price":"99999999999.99"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, e := newTestHandler()
			c := e.NewContext(tenantRequest(http.MethodPost, tt.body, uuid.New()), httptest.NewRecorder())

			err := h.Create(c)
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %v", err)
			}
		})
	}
}

func TestHandler_DeleteProcedure_Linked(t *testing.T) {
	svc, repo := newTestService()
	h, e := NewHandler(svc), echo.New()
	companyID := uuid.New()
	p := &Procedure{Name: "Corte", Price: money.MustParse("30.00")}
	svc.Create(context.Background(), companyID, p)
	repo.links[p.ID] = 2

	c := e.NewContext(tenantRequest(http.MethodDelete, "", companyID), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	err := h.Delete(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusConflict {
		t.Errorf("expected 409, got %v", err)
	}
}

func TestHandler_GetProcedure_InvalidID(t *testing.T) {
	h, e := newTestHandler()
	c := e.NewContext(tenantRequest(http.MethodGet, "", uuid.New()), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_ListProcedures(t *testing.T) {
	svc, _ := newTestService()
	h, e := NewHandler(svc), echo.New()
	companyID := uuid.New()
	svc.Create(context.Background(), companyID, &Procedure{Name: "Corte", Price: money.MustParse("30.00")})
	svc.Create(context.Background(), uuid.New(), &Procedure{Name: "Other", Price: money.MustParse("1.00")})

	rec := httptest.NewRecorder()
	c := e.NewContext(tenantRequest(http.MethodGet, "", companyID), rec)
	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Data  []Procedure `json:"data"`
		Total int         `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Total != 1 || len(body.Data) != 1 || body.Data[0].Name != "Corte" {
		t.Errorf("expected only the tenant's procedure, got %+v", body)
	}
}
