package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"survey-analyst/internal/models"
)

func TestNormalizeType(t *testing.T) {
	tests := map[string]string{
		"VARCHAR(255)":             "varchar",
		"int(11) unsigned":         "int",
		"NUMERIC(10, 2)":           "numeric",
		"Double Precision":         "double precision",
		"character  varying(64)":   "character varying",
		"bigint unsigned zerofill": "bigint",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeType(in), in)
	}
}

func TestClassifyType(t *testing.T) {
	tests := []struct {
		declared string
		want     models.QuestionType
		ok       bool
	}{
		{"integer", models.QuestionTypeQuantitative, true},
		{"float8", models.QuestionTypeQuantitative, true},
		{"decimal(5,2)", models.QuestionTypeQuantitative, true},
		{"tinyint(1)", models.QuestionTypeQuantitative, true},
		{"text", models.QuestionTypeQualitative, true},
		{"char(1)", models.QuestionTypeQualitative, true},
		{"enum('a','b')", models.QuestionTypeQualitative, true},
		{"boolean", "", false},
		{"date", "", false},
		{"integer[]", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			got, ok := ClassifyType(tt.declared)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
