package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/moogar0880/problems"
)

const problemContentType = "application/problem+json"

// JSON writes the provided payload as JSON with the supplied status code.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// Data writes the standard {"data": ...} success envelope.
func Data(w http.ResponseWriter, status int, data any) {
	JSON(w, status, map[string]any{"data": data})
}

// FieldProblem names one invalid request field.
type FieldProblem struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Problem is an RFC 7807 document with optional field-level details.
type Problem struct {
	*problems.Problem
	Errors   []FieldProblem `json:"errors,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// NewProblem builds a problem for the request path.
func NewProblem(r *http.Request, status int, kind, detail string) *Problem {
	p := problems.NewStatusProblem(status).
		WithType(kind).
		WithDetail(detail)
	if r != nil {
		p = p.WithInstance(r.URL.Path)
	}
	return &Problem{Problem: p}
}

// WriteProblem renders a problem document.
func WriteProblem(w http.ResponseWriter, p *Problem) {
	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// Error writes a problem document with the given status, type and detail.
func Error(w http.ResponseWriter, r *http.Request, status int, kind, detail string) {
	WriteProblem(w, NewProblem(r, status, kind, detail))
}
