// internal/intent/extract.go
package intent

import (
	"regexp"
	"strconv"
	"strings"
)

var numericToken = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ExtractDiagnosticID returns the first integer token in the question, or nil
// when there is none. Digit runs count even when glued to letters ("id42");
// decimals such as "4.5" are skipped rather than truncated. An integer token
// too large for int64 yields nil.
func ExtractDiagnosticID(question string) *int64 {
	for _, tok := range numericToken.FindAllString(question, -1) {
		if strings.Contains(tok, ".") {
			continue
		}
		id, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil
		}
		return &id
	}
	return nil
}
