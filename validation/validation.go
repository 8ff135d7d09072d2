// Package validation implements schema-based input validation. A schema
// declares the accepted fields and their constraints; validation strips
// unknown fields and reports every violated constraint at once instead
// of stopping at the first.
package validation

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/invoicely/apperr"
)

type Type string

const (
	TypeString Type = "string"
	TypeNumber Type = "number"
	TypeBool   Type = "boolean"
	TypeUUID   Type = "uuid"
	TypeEmail  Type = "email"
	TypeDate   Type = "date"
	TypeArray  Type = "array"
	TypeObject Type = "object"
)

// currentUser is attached by the auth middleware and must reach the
// service layer untouched, so every schema implicitly permits it.
const currentUserField = "currentUser"

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// Rule describes the constraints on a single field. Messages overrides
// the default message per constraint name ("required", "type", "minLen",
// "maxLen", "pattern", "enum", "min", "greaterThan", "minItems").
type Rule struct {
	Required    bool
	Type        Type
	MinLen      int
	MaxLen      int
	Pattern     *regexp.Regexp
	Enum        []string
	Min         *float64
	GreaterThan *float64
	MinItems    int
	Elem        Schema
	Messages    map[string]string
}

type Schema map[string]Rule

// Validate checks payload against the schema. On success it returns a
// copy containing only the declared fields (plus currentUser); on
// failure it returns a single Validation error carrying every violation.
func (s Schema) Validate(payload map[string]any) (map[string]any, *apperr.Error) {
	if payload == nil {
		payload = map[string]any{}
	}

	cleaned := make(map[string]any, len(s)+1)
	var violations []apperr.FieldError

	for field, rule := range s {
		value, present := payload[field]
		if !present || value == nil || value == "" {
			if rule.Required {
				violations = append(violations, fieldError(field, rule, "required", field+" is required"))
			}
			continue
		}
		violations = append(violations, rule.check(field, value)...)
		cleaned[field] = value
	}

	if cu, ok := payload[currentUserField]; ok {
		cleaned[currentUserField] = cu
	}

	if len(violations) > 0 {
		return nil, apperr.Validation("Invalid request payload", violations...)
	}
	return cleaned, nil
}

func (r Rule) check(field string, value any) []apperr.FieldError {
	var violations []apperr.FieldError

	switch r.Type {
	case TypeString, "":
		str, ok := value.(string)
		if !ok {
			return []apperr.FieldError{fieldError(field, r, "type", field+" must be a string")}
		}
		if r.MinLen > 0 && len(str) < r.MinLen {
			violations = append(violations, fieldError(field, r, "minLen", fmt.Sprintf("%s must be at least %d characters", field, r.MinLen)))
		}
		if r.MaxLen > 0 && len(str) > r.MaxLen {
			violations = append(violations, fieldError(field, r, "maxLen", fmt.Sprintf("%s must be at most %d characters", field, r.MaxLen)))
		}
		if r.Pattern != nil && !r.Pattern.MatchString(str) {
			violations = append(violations, fieldError(field, r, "pattern", field+" has an invalid format"))
		}
		if len(r.Enum) > 0 && !contains(r.Enum, str) {
			violations = append(violations, fieldError(field, r, "enum", field+" has an invalid value"))
		}

	case TypeUUID:
		str, ok := value.(string)
		if !ok {
			return []apperr.FieldError{fieldError(field, r, "type", field+" must be a string")}
		}
		if _, err := uuid.Parse(str); err != nil {
			violations = append(violations, fieldError(field, r, "type", field+" must be a valid id"))
		}

	case TypeEmail:
		str, ok := value.(string)
		if !ok || !emailPattern.MatchString(str) {
			violations = append(violations, fieldError(field, r, "type", field+" must be a valid email"))
		}

	case TypeDate:
		str, ok := value.(string)
		if !ok || parseDate(str) == nil {
			violations = append(violations, fieldError(field, r, "type", field+" must be a valid date"))
		}

	case TypeNumber:
		num, ok := toNumber(value)
		if !ok {
			return []apperr.FieldError{fieldError(field, r, "type", field+" must be a number")}
		}
		if r.Min != nil && num < *r.Min {
			violations = append(violations, fieldError(field, r, "min", fmt.Sprintf("%s must be at least %v", field, *r.Min)))
		}
		if r.GreaterThan != nil && num <= *r.GreaterThan {
			violations = append(violations, fieldError(field, r, "greaterThan", fmt.Sprintf("%s must be greater than %v", field, *r.GreaterThan)))
		}

	case TypeBool:
		if _, ok := value.(bool); !ok {
			violations = append(violations, fieldError(field, r, "type", field+" must be a boolean"))
		}

	case TypeArray:
		items, ok := value.([]any)
		if !ok {
			return []apperr.FieldError{fieldError(field, r, "type", field+" must be an array")}
		}
		if len(items) < r.MinItems {
			violations = append(violations, fieldError(field, r, "minItems", fmt.Sprintf("%s must have at least %d items", field, r.MinItems)))
		}
		if r.Elem != nil {
			for i, item := range items {
				obj, ok := item.(map[string]any)
				if !ok {
					violations = append(violations, fieldError(field, r, "type", fmt.Sprintf("%s[%d] must be an object", field, i)))
					continue
				}
				violations = append(violations, r.Elem.checkNested(fmt.Sprintf("%s[%d]", field, i), obj)...)
			}
		}

	case TypeObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return []apperr.FieldError{fieldError(field, r, "type", field+" must be an object")}
		}
		if r.Elem != nil {
			violations = append(violations, r.Elem.checkNested(field, obj)...)
		}
	}

	return violations
}

func (s Schema) checkNested(prefix string, obj map[string]any) []apperr.FieldError {
	var violations []apperr.FieldError
	for field, rule := range s {
		path := prefix + "." + field
		value, present := obj[field]
		if !present || value == nil || value == "" {
			if rule.Required {
				violations = append(violations, fieldError(path, rule, "required", field+" is required"))
			}
			continue
		}
		for _, v := range rule.check(field, value) {
			v.Field = prefix + "." + v.Field
			violations = append(violations, v)
		}
	}
	return violations
}

func fieldError(field string, rule Rule, constraint, fallback string) apperr.FieldError {
	msg := fallback
	if custom, ok := rule.Messages[constraint]; ok {
		msg = custom
	}
	return apperr.FieldError{Field: field, Message: msg}
}

// ParseDate parses the date formats accepted by schema fields.
func ParseDate(s string) *time.Time {
	return parseDate(s)
}

func parseDate(s string) *time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func toNumber(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Float returns a pointer to f, for rule literals.
func Float(f float64) *float64 {
	return &f
}
