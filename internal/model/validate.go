package model

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// notblank treats whitespace-only text like an empty string.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// ValidationError carries every failed field rule in evaluation order.
// Handlers answer it with 400 and the Messages array as body.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// NewValidationError builds a ValidationError from fixed messages.
func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Messages: msgs}
}

// Rule is one validator tag paired with the message emitted when it fails.
type Rule struct {
	Tag     string
	Message string
}

// Field describes how one input field is checked.  Value is nil when the
// client omitted the field (or sent null); in that case only Missing is
// reported, and an empty Missing makes the field optional.
type Field struct {
	Value   any
	Missing string
	Rules   []Rule
}

// required is the rule set shared by every mandatory text field.
func required(name string) Field {
	msg := name + " is required"
	return Field{Missing: msg, Rules: []Rule{{Tag: "notblank", Message: msg}}}
}

func (f Field) with(v any, extra ...Rule) Field {
	f.Value = v
	f.Rules = append(append([]Rule(nil), f.Rules...), extra...)
	return f
}

// Check evaluates fields in order and returns a *ValidationError listing all
// failures, or nil when every rule passes.
func Check(fields ...Field) error {
	var msgs []string
	for _, f := range fields {
		if f.Value == nil {
			if f.Missing != "" {
				msgs = append(msgs, f.Missing)
			}
			continue
		}
		for _, r := range f.Rules {
			if err := validate.Var(f.Value, r.Tag); err != nil {
				msgs = append(msgs, r.Message)
			}
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return &ValidationError{Messages: msgs}
}

// str and num turn optional JSON values into Field values, keeping nil for
// absent fields so Check can tell "missing" from "empty".  A blank number
// counts as missing.
func str(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func num(p *JSONInt) any {
	if p == nil || p.Blank {
		return nil
	}
	return p.Int
}

// numOrBlank is num but keeps a blank number as "" so its rules still run.
func numOrBlank(p *JSONInt) any {
	if p != nil && p.Blank {
		return ""
	}
	return num(p)
}

// nonEmpty treats an empty or whitespace-only string like an absent one.
func nonEmpty(p *string) any {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	return strings.TrimSpace(*p)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *JSONInt) int {
	if p == nil {
		return 0
	}
	return p.Int
}
