package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runSchema = `{
  "type": "object",
  "properties": {
    "message": {"type": "string", "minLength": 1},
    "user_id": {"type": "string"}
  },
  "required": ["message"],
  "additionalProperties": false
}`

func TestSchema_Validate(t *testing.T) {
	s := MustCompile(runSchema)

	tests := []struct {
		name      string
		doc       map[string]interface{}
		wantValid bool
		wantField string
	}{
		{"valid", map[string]interface{}{"message": "hi"}, true, ""},
		{"missing message", map[string]interface{}{"user_id": "u1"}, false, "(root)"},
		{"empty message", map[string]interface{}{"message": ""}, false, "message"},
		{"extra field", map[string]interface{}{"message": "hi", "foo": 1}, false, "(root)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Validate(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, res.Valid)
			if !tt.wantValid {
				assert.True(t, res.HasErrors(tt.wantField), "errors: %v", res.GetErrorMessages())
			}
		})
	}
}

func TestSchema_ValidateJSON_Malformed(t *testing.T) {
	res := MustCompile(runSchema).ValidateJSON([]byte(`{"message":`))
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "INVALID_JSON", res.Errors[0].Code)
}

func TestSchema_ErrorCodes(t *testing.T) {
	res := MustCompile(runSchema).ValidateJSON([]byte(`{"user_id": "u1"}`))
	require.False(t, res.Valid)
	assert.Equal(t, "REQUIRED", res.Errors[0].Code)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
}

func TestValidationResult_Merge(t *testing.T) {
	res := &ValidationResult{Valid: true}
	res.Merge("tables", "single survey needs one table", "CARDINALITY_MISMATCH")
	assert.False(t, res.Valid)
	assert.Len(t, res.GetErrorsForField("tables"), 1)
}

func TestIsSQLIdentifier(t *testing.T) {
	assert.True(t, IsSQLIdentifier("customer_data"))
	assert.True(t, IsSQLIdentifier("_x1"))
	assert.False(t, IsSQLIdentifier("1abc"))
	assert.False(t, IsSQLIdentifier("a;drop table x"))
	assert.False(t, IsSQLIdentifier(""))
}
