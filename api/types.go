// Package api - Request/response types
package api

import (
	"glassquote/core/configstore"
	"glassquote/core/formula"
	"glassquote/core/quote"
	"glassquote/core/types"
)

// QuoteRequest is the body of POST /api/quote
type QuoteRequest struct {
	Spec      types.GlassSpec         `json:"spec"`
	Selection types.EdgeWorkSelection `json:"selection"`
	Geometry  types.Geometry          `json:"geometry"`
}

// QuoteResponse wraps a computed quote
type QuoteResponse struct {
	Quote *quote.QuoteResult `json:"quote"`
}

// FormulaUpdateRequest is the body of PUT /api/formula. Components
// defaults to every component enabled when omitted.
type FormulaUpdateRequest struct {
	Mode             formula.Mode              `json:"mode"`
	DivisorValue     string                    `json:"divisor_value,omitempty"`
	MultiplierValue  string                    `json:"multiplier_value,omitempty"`
	CustomExpression string                    `json:"custom_expression,omitempty"`
	Components       *formula.ComponentToggles `json:"components,omitempty"`
}

// FormulaResponse wraps the active configuration
type FormulaResponse struct {
	Config formula.Config `json:"config"`
}

// FormulaUpdateResponse reports an accepted update
type FormulaUpdateResponse struct {
	Config  formula.Config `json:"config"`
	AuditID string         `json:"audit_id"`
}

// ValidateExpressionRequest is the body of POST /api/formula/validate
type ValidateExpressionRequest struct {
	Expression string `json:"expression"`
}

// ValidateExpressionResponse reports a dry-run validation outcome
type ValidateExpressionResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// AuditResponse lists audit entries, newest first
type AuditResponse struct {
	Entries []configstore.AuditEntry `json:"entries"`
	Count   int                      `json:"count"`
}
