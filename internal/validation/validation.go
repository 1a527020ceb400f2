package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Input is a raw field name to value mapping, as decoded from a request.
type Input map[string]string

// Get returns the trimmed value of a field, or "" when it is absent.
func (in Input) Get(field string) string {
	return strings.TrimSpace(in[field])
}

// FieldError is a single violated rule.
type FieldError struct {
	Field    string `json:"field,omitempty"`
	Message  string `json:"msg"`
	Value    string `json:"value"`
	Location string `json:"location,omitempty"`
}

// Errors is the ordered list of field errors rendered in a 400 response.
type Errors []FieldError

// Rule pairs a validator tag with the message reported when it fails.
type Rule struct {
	Tag     string
	Message string
}

// Field is the rule chain applied to one input field.
type Field struct {
	Name     string
	Location string
	Rules    []Rule
}

// Validation evaluates rule chains using go-playground/validator.
type Validation struct {
	validator *validator.Validate
}

// New creates a Validation with the custom product tags registered.
func New() *Validation {
	v := validator.New()
	v.RegisterValidation("positive", validatePositive)
	v.RegisterValidation("decimals", validateDecimals)
	v.RegisterValidation("price_ceiling", validatePriceCeiling)
	v.RegisterValidation("record_id", validateRecordID)
	return &Validation{validator: v}
}

// Check runs every rule of every field against the input and collects all
// failures in field order, then rule order. Nothing short-circuits.
func (v *Validation) Check(in Input, fields ...Field) Errors {
	var errs Errors
	for _, f := range fields {
		value := in.Get(f.Name)
		for _, rule := range f.Rules {
			if err := v.validator.Var(value, rule.Tag); err != nil {
				errs = append(errs, FieldError{
					Field:    f.Name,
					Message:  rule.Message,
					Value:    value,
					Location: f.Location,
				})
			}
		}
	}
	return errs
}
