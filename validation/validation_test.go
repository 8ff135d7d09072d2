package validation

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/invoicely/apperr"
)

var testSchema = Schema{
	"name":  {Required: true, MinLen: 2, MaxLen: 10},
	"email": {Required: true, Type: TypeEmail},
	"phone": {Pattern: regexp.MustCompile(`^[0-9]{10}$`)},
	"role":  {Enum: []string{"ADMIN", "CUSTOMER"}},
}

func TestValidateCollectsAllViolations(t *testing.T) {
	_, err := testSchema.Validate(map[string]any{
		"name":  "x",
		"phone": "123",
	})

	require.NotNil(t, err)
	assert.Equal(t, apperr.KindValidation, err.Kind)

	fields := make(map[string]string)
	for _, f := range err.Fields {
		fields[f.Field] = f.Message
	}
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "phone")
}

func TestValidateStripsUnknownFields(t *testing.T) {
	data, err := testSchema.Validate(map[string]any{
		"name":     "Alice",
		"email":    "alice@example.com",
		"isAdmin":  true,
		"injected": "value",
	})

	require.Nil(t, err)
	assert.NotContains(t, data, "isAdmin")
	assert.NotContains(t, data, "injected")
	assert.Equal(t, "Alice", data["name"])
}

func TestValidateCurrentUserAlwaysPassesThrough(t *testing.T) {
	principal := map[string]any{"userId": "u1", "role": "ADMIN"}
	data, err := testSchema.Validate(map[string]any{
		"name":        "Alice",
		"email":       "alice@example.com",
		"currentUser": principal,
	})

	require.Nil(t, err)
	assert.Equal(t, principal, data["currentUser"])
}

func TestValidateCustomMessages(t *testing.T) {
	schema := Schema{
		"password": {
			Required: true,
			MinLen:   6,
			Messages: map[string]string{
				"required": "Password is required",
				"minLen":   "Password must be at least 6 characters",
			},
		},
	}

	_, err := schema.Validate(map[string]any{})
	require.NotNil(t, err)
	assert.Equal(t, "Password is required", err.Fields[0].Message)

	_, err = schema.Validate(map[string]any{"password": "abc"})
	require.NotNil(t, err)
	assert.Equal(t, "Password must be at least 6 characters", err.Fields[0].Message)
}

func TestValidateNumberBounds(t *testing.T) {
	schema := Schema{
		"gst":    {Type: TypeNumber, Min: Float(0)},
		"amount": {Type: TypeNumber, GreaterThan: Float(0)},
	}

	_, err := schema.Validate(map[string]any{"gst": -1.0, "amount": 0.0})
	require.NotNil(t, err)
	assert.Len(t, err.Fields, 2)

	_, err = schema.Validate(map[string]any{"gst": 0.0, "amount": 0.01})
	assert.Nil(t, err)
}

func TestValidateUUIDAndDate(t *testing.T) {
	schema := Schema{
		"id":   {Type: TypeUUID},
		"date": {Type: TypeDate},
	}

	_, err := schema.Validate(map[string]any{"id": "not-a-uuid", "date": "yesterday"})
	require.NotNil(t, err)
	assert.Len(t, err.Fields, 2)

	_, err = schema.Validate(map[string]any{
		"id":   "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		"date": "2026-01-15",
	})
	assert.Nil(t, err)
}

func TestValidateNestedArrayItems(t *testing.T) {
	schema := Schema{
		"items": {
			Required: true,
			Type:     TypeArray,
			MinItems: 1,
			Elem: Schema{
				"description": {Required: true},
				"amount":      {Required: true, Type: TypeNumber, GreaterThan: Float(0)},
			},
		},
	}

	t.Run("empty array", func(t *testing.T) {
		_, err := schema.Validate(map[string]any{"items": []any{}})
		require.NotNil(t, err)
	})

	t.Run("invalid items report their index", func(t *testing.T) {
		_, err := schema.Validate(map[string]any{"items": []any{
			map[string]any{"description": "ok", "amount": 10.0},
			map[string]any{"amount": -5.0},
		}})
		require.NotNil(t, err)

		var fields []string
		for _, f := range err.Fields {
			fields = append(fields, f.Field)
		}
		assert.Contains(t, fields, "items[1].description")
		assert.Contains(t, fields, "items[1].amount")
		assert.NotContains(t, fields, "items[0].description")
	})

	t.Run("valid items pass", func(t *testing.T) {
		_, err := schema.Validate(map[string]any{"items": []any{
			map[string]any{"description": "Widget", "amount": 100.0},
		}})
		assert.Nil(t, err)
	})
}

func TestValidateMissingOptionalFieldIsFine(t *testing.T) {
	data, err := testSchema.Validate(map[string]any{
		"name":  "Alice",
		"email": "alice@example.com",
	})

	require.Nil(t, err)
	assert.NotContains(t, data, "phone")
}
