// Package api - Request handlers
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"glassquote/core/formula"
	"glassquote/core/quote"
	"glassquote/core/rules"
	"glassquote/internal/errors"
)

// handleQuote handles POST /api/quote
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	cat, err := s.loader.LoadCatalog(ctx)
	if err != nil {
		s.writeError(w, "STORAGE_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	cfg, err := s.configs.GetActive(ctx)
	if err != nil {
		s.writeError(w, "STORAGE_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	engine := quote.NewEngine(cat, s.minArea)
	result, err := engine.CalculateQuote(req.Spec, req.Selection, req.Geometry, cfg)
	if err != nil {
		if violation, ok := err.(*rules.Violation); ok {
			s.writeJSON(w, map[string]interface{}{"violation": violation}, http.StatusUnprocessableEntity)
			return
		}
		if errors.IsType(err, errors.TypeInput) {
			s.writeError(w, "INPUT_ERROR", err.Error(), http.StatusBadRequest)
			return
		}
		s.writeError(w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, QuoteResponse{Quote: result}, http.StatusOK)
}

// handleGetFormula handles GET /api/formula
func (s *Server) handleGetFormula(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.configs.GetActive(r.Context())
	if err != nil {
		s.writeError(w, "STORAGE_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, FormulaResponse{Config: cfg}, http.StatusOK)
}

// handleUpdateFormula handles PUT /api/formula. The actor comes from
// the X-Actor header; authentication itself is an external
// collaborator's concern.
func (s *Server) handleUpdateFormula(w http.ResponseWriter, r *http.Request) {
	var req FormulaUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	cfg, err := req.toConfig()
	if err != nil {
		s.writeError(w, "INPUT_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	actor := r.Header.Get("X-Actor")
	entry, err := s.configs.Update(r.Context(), cfg, actor)
	if err != nil {
		switch {
		case errors.IsType(err, errors.TypeFormula), errors.IsType(err, errors.TypeInput):
			s.writeError(w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		default:
			s.writeError(w, "STORAGE_ERROR", err.Error(), http.StatusInternalServerError)
		}
		return
	}

	s.writeJSON(w, FormulaUpdateResponse{Config: cfg, AuditID: entry.ID}, http.StatusOK)
}

// handleValidateExpression handles POST /api/formula/validate
func (s *Server) handleValidateExpression(w http.ResponseWriter, r *http.Request) {
	var req ValidateExpressionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	if err := formula.ValidateExpression(req.Expression); err != nil {
		s.writeJSON(w, ValidateExpressionResponse{Valid: false, Error: err.Error()}, http.StatusOK)
		return
	}
	s.writeJSON(w, ValidateExpressionResponse{Valid: true}, http.StatusOK)
}

// handleAudit handles GET /api/formula/audit
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := s.configs.Audit(r.Context(), 0)
	if err != nil {
		s.writeError(w, "STORAGE_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, AuditResponse{Entries: entries, Count: len(entries)}, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version": s.version,
		"engine":  "glassquote",
	}, http.StatusOK)
}

// toConfig converts the update request into a formula configuration
func (r FormulaUpdateRequest) toConfig() (formula.Config, error) {
	cfg := formula.DefaultConfig()
	cfg.Mode = r.Mode
	cfg.CustomExpression = r.CustomExpression

	if r.DivisorValue != "" {
		v, err := decimal.NewFromString(r.DivisorValue)
		if err != nil {
			return formula.Config{}, errors.Newf(errors.TypeInput, "malformed divisor value %q", r.DivisorValue)
		}
		cfg.DivisorValue = v
	}
	if r.MultiplierValue != "" {
		v, err := decimal.NewFromString(r.MultiplierValue)
		if err != nil {
			return formula.Config{}, errors.Newf(errors.TypeInput, "malformed multiplier value %q", r.MultiplierValue)
		}
		cfg.MultiplierValue = v
	}
	if r.Components != nil {
		cfg.Components = *r.Components
	}

	return cfg, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, code, message string, status int) {
	s.writeJSON(w, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	}, status)
}
