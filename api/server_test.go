package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"glassquote/core/catalog"
	"glassquote/core/configstore"
)

// staticLoader serves a fixed catalog snapshot
type staticLoader struct {
	catalog *catalog.Catalog
}

func (l staticLoader) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	return l.catalog, nil
}

func testServer() *Server {
	loader := staticLoader{catalog: catalog.Default()}
	configs := configstore.NewManager(configstore.NewMemoryBackend())
	return NewServer(loader, configs, decimal.NewFromInt(2), "test")
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestQuoteEndpoint(t *testing.T) {
	srv := testServer()

	rec := doJSON(t, srv, http.MethodPost, "/api/quote", map[string]interface{}{
		"spec": map[string]string{"thickness": "1/4", "type": "clear"},
		"selection": map[string]interface{}{
			"shape":  "rectangle",
			"polish": true,
		},
		"geometry": map[string]interface{}{
			"area_sq_ft":   8,
			"perimeter_in": 14,
		},
	}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp QuoteResponse
	decodeBody(t, rec, &resp)
	if resp.Quote == nil {
		t.Fatal("no quote in response")
	}
	if !resp.Quote.FinalPrice.Equal(decimal.RequireFromString("399.64")) {
		t.Errorf("final price = %s, want 399.64", resp.Quote.FinalPrice)
	}
	if !resp.Quote.Subtotal.Equal(decimal.RequireFromString("111.90")) {
		t.Errorf("subtotal = %s, want 111.90", resp.Quote.Subtotal)
	}
}

func TestQuoteEndpointRuleViolation(t *testing.T) {
	srv := testServer()

	// 1/8" mirror is not stocked
	rec := doJSON(t, srv, http.MethodPost, "/api/quote", map[string]interface{}{
		"spec":      map[string]string{"thickness": "1/8", "type": "mirror"},
		"selection": map[string]interface{}{"shape": "rectangle"},
		"geometry":  map[string]interface{}{"area_sq_ft": 4, "perimeter_in": 10},
	}, nil)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Violation struct {
			Rule    string `json:"rule"`
			Message string `json:"message"`
		} `json:"violation"`
	}
	decodeBody(t, rec, &resp)
	if resp.Violation.Rule == "" {
		t.Fatalf("no violation in body %s", rec.Body.String())
	}
}

func TestQuoteEndpointBadInput(t *testing.T) {
	srv := testServer()

	rec := doJSON(t, srv, http.MethodPost, "/api/quote", map[string]interface{}{
		"spec":      map[string]string{"thickness": "1/4", "type": "clear"},
		"selection": map[string]interface{}{"shape": "rectangle"},
		"geometry":  map[string]interface{}{"area_sq_ft": 0},
	}, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
	}
}

func TestFormulaGetDefault(t *testing.T) {
	srv := testServer()

	rec := doJSON(t, srv, http.MethodGet, "/api/formula", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp FormulaResponse
	decodeBody(t, rec, &resp)
	if resp.Config.Mode != "divisor" {
		t.Errorf("mode = %s, want divisor", resp.Config.Mode)
	}
	if !resp.Config.DivisorValue.Equal(decimal.RequireFromString("0.28")) {
		t.Errorf("divisor = %s, want 0.28", resp.Config.DivisorValue)
	}
}

func TestFormulaUpdateAndAudit(t *testing.T) {
	srv := testServer()

	rec := doJSON(t, srv, http.MethodPut, "/api/formula", FormulaUpdateRequest{
		Mode:         "divisor",
		DivisorValue: "0.30",
	}, map[string]string{"X-Actor": "admin@shop"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}

	var updated FormulaUpdateResponse
	decodeBody(t, rec, &updated)
	if updated.AuditID == "" {
		t.Fatal("no audit ID in update response")
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/formula", nil, nil)
	var active FormulaResponse
	decodeBody(t, rec, &active)
	if !active.Config.DivisorValue.Equal(decimal.RequireFromString("0.30")) {
		t.Errorf("active divisor = %s, want 0.30", active.Config.DivisorValue)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/formula/audit", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("audit status = %d", rec.Code)
	}
	var audit AuditResponse
	decodeBody(t, rec, &audit)
	if audit.Count != 1 || len(audit.Entries) != 1 {
		t.Fatalf("audit count = %d, want 1", audit.Count)
	}
	if audit.Entries[0].Actor != "admin@shop" {
		t.Errorf("audit actor = %q", audit.Entries[0].Actor)
	}
}

func TestFormulaUpdateRejectsUnsafeExpression(t *testing.T) {
	srv := testServer()

	rec := doJSON(t, srv, http.MethodPut, "/api/formula", FormulaUpdateRequest{
		Mode:             "custom",
		CustomExpression: "total + import('os')",
	}, map[string]string{"X-Actor": "admin"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
	}

	// The rejected update must leave the default active
	rec = doJSON(t, srv, http.MethodGet, "/api/formula", nil, nil)
	var active FormulaResponse
	decodeBody(t, rec, &active)
	if active.Config.Mode != "divisor" {
		t.Errorf("active mode = %s after rejected update, want divisor", active.Config.Mode)
	}
}

func TestFormulaUpdateRequiresActor(t *testing.T) {
	srv := testServer()

	rec := doJSON(t, srv, http.MethodPut, "/api/formula", FormulaUpdateRequest{
		Mode:         "divisor",
		DivisorValue: "0.30",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestValidateExpressionEndpoint(t *testing.T) {
	srv := testServer()

	cases := []struct {
		expression string
		valid      bool
	}{
		{"total / 0.28", true},
		{"round(max(total * 3.5, 35), 2)", true},
		{"total / 0", false},
		{"price * 2", false},
		{"total ** 2", false},
	}

	for _, tc := range cases {
		rec := doJSON(t, srv, http.MethodPost, "/api/formula/validate",
			ValidateExpressionRequest{Expression: tc.expression}, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%q: status = %d", tc.expression, rec.Code)
		}
		var resp ValidateExpressionResponse
		decodeBody(t, rec, &resp)
		if resp.Valid != tc.valid {
			t.Errorf("%q: valid = %v, want %v (error %q)", tc.expression, resp.Valid, tc.valid, resp.Error)
		}
		if !tc.valid && resp.Error == "" {
			t.Errorf("%q: rejected expression carries no error message", tc.expression)
		}
	}
}

func TestHealthAndVersion(t *testing.T) {
	srv := testServer()

	rec := doJSON(t, srv, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/version", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("version status = %d", rec.Code)
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["version"] != "test" {
		t.Errorf("version = %q, want test", resp["version"])
	}
}
