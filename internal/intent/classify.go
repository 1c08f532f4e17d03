// internal/intent/classify.go
package intent

import (
	"regexp"
	"strings"

	"survey-analyst/internal/models"
)

var (
	typeParams = regexp.MustCompile(`\([^)]*\)`)
	spaces     = regexp.MustCompile(`\s+`)
)

var numericTypes = map[string]bool{
	"smallint": true, "integer": true, "int": true, "bigint": true,
	"tinyint": true, "mediumint": true,
	"int2": true, "int4": true, "int8": true,
	"smallserial": true, "serial": true, "bigserial": true,
	"decimal": true, "numeric": true, "dec": true, "fixed": true,
	"real": true, "float": true, "float4": true, "float8": true,
	"double": true, "double precision": true,
}

var textTypes = map[string]bool{
	"text": true, "tinytext": true, "mediumtext": true, "longtext": true,
	"varchar": true, "character varying": true, "char": true, "character": true,
	"nvarchar": true, "nchar": true, "bpchar": true, "citext": true,
	"string": true, "enum": true,
}

// NormalizeType lower-cases a declared column type and strips length or
// precision parameters and the unsigned/zerofill attributes, so that
// "VARCHAR(255)" becomes "varchar" and "int(11) unsigned" becomes "int".
func NormalizeType(declared string) string {
	t := strings.ToLower(declared)
	t = typeParams.ReplaceAllString(t, " ")
	fields := strings.Fields(spaces.ReplaceAllString(t, " "))
	kept := fields[:0]
	for _, f := range fields {
		if f == "unsigned" || f == "signed" || f == "zerofill" {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// ClassifyType maps a declared column type onto a question type. The second
// return value is false when the type is neither numeric nor text.
func ClassifyType(declared string) (models.QuestionType, bool) {
	t := NormalizeType(declared)
	switch {
	case numericTypes[t]:
		return models.QuestionTypeQuantitative, true
	case textTypes[t]:
		return models.QuestionTypeQualitative, true
	default:
		return "", false
	}
}
