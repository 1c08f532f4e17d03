// internal/analysis/stats.go
package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"survey-analyst/internal/models"
)

var ErrMalformedResult = errors.New("MALFORMED_RESULT")

// toDecimal accepts the value shapes database drivers hand back for numeric
// columns. ok is false for SQL NULL.
func toDecimal(v interface{}) (d decimal.Decimal, ok bool, err error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false, nil
	case int64:
		return decimal.NewFromInt(x), true, nil
	case int32:
		return decimal.NewFromInt(int64(x)), true, nil
	case int:
		return decimal.NewFromInt(int64(x)), true, nil
	case float64:
		return decimal.NewFromFloat(x), true, nil
	case float32:
		return decimal.NewFromFloat32(x), true, nil
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			return decimal.Zero, false, fmt.Errorf("%w: %q is not a number", ErrMalformedResult, x)
		}
		return d, true, nil
	case []byte:
		return toDecimal(string(x))
	default:
		return decimal.Zero, false, fmt.Errorf("%w: unexpected value %T", ErrMalformedResult, v)
	}
}

func floatPtr(d decimal.Decimal) *float64 {
	f := d.Round(4).InexactFloat64()
	return &f
}

func sourceOf(row models.Row) (string, error) {
	switch s := row["source"].(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", fmt.Errorf("%w: row without source", ErrMalformedResult)
	}
}

func answerOf(v interface{}) string {
	switch a := v.(type) {
	case nil:
		return "(no answer)"
	case string:
		return a
	case []byte:
		return string(a)
	case int64:
		return strconv.FormatInt(a, 10)
	default:
		return fmt.Sprint(a)
	}
}

func countOf(row models.Row) (int64, error) {
	d, ok, err := toDecimal(row["responses"])
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return d.IntPart(), nil
}

// quantitativeStats reads rows of (source, responses, mean, min_value,
// max_value) and computes the response-weighted overall mean.
func quantitativeStats(rows []models.Row) ([]models.SourceStats, models.OverallStats, error) {
	var (
		sources  []models.SourceStats
		overall  models.OverallStats
		weighted = decimal.Zero
		weight   int64
	)

	for _, row := range rows {
		src, err := sourceOf(row)
		if err != nil {
			return nil, overall, err
		}
		n, err := countOf(row)
		if err != nil {
			return nil, overall, err
		}
		s := models.SourceStats{Source: src, Responses: n}

		mean, hasMean, err := toDecimal(row["mean"])
		if err != nil {
			return nil, overall, err
		}
		if hasMean {
			s.Mean = floatPtr(mean)
			if n > 0 {
				weighted = weighted.Add(mean.Mul(decimal.NewFromInt(n)))
				weight += n
			}
		}
		if lo, ok, err := toDecimal(row["min_value"]); err != nil {
			return nil, overall, err
		} else if ok {
			s.Min = floatPtr(lo)
		}
		if hi, ok, err := toDecimal(row["max_value"]); err != nil {
			return nil, overall, err
		} else if ok {
			s.Max = floatPtr(hi)
		}

		overall.Responses += n
		sources = append(sources, s)
	}

	if weight > 0 {
		overall.Mean = floatPtr(weighted.Div(decimal.NewFromInt(weight)))
	}
	return sources, overall, nil
}

// qualitativeStats reads rows of (source, answer, responses) and groups
// answers per source in row order.
func qualitativeStats(rows []models.Row) ([]models.SourceStats, models.OverallStats, error) {
	var (
		sources []models.SourceStats
		index   = map[string]int{}
		totals  = map[string]int64{}
		overall models.OverallStats
	)

	for _, row := range rows {
		src, err := sourceOf(row)
		if err != nil {
			return nil, overall, err
		}
		n, err := countOf(row)
		if err != nil {
			return nil, overall, err
		}
		answer := answerOf(row["answer"])

		i, ok := index[src]
		if !ok {
			i = len(sources)
			index[src] = i
			sources = append(sources, models.SourceStats{Source: src})
		}
		sources[i].Responses += n
		sources[i].Answers = append(sources[i].Answers, models.AnswerCount{Answer: answer, Responses: n})
		totals[answer] += n
		overall.Responses += n
	}

	answers := make([]string, 0, len(totals))
	for a := range totals {
		answers = append(answers, a)
	}
	sort.Slice(answers, func(i, j int) bool {
		if totals[answers[i]] != totals[answers[j]] {
			return totals[answers[i]] > totals[answers[j]]
		}
		return answers[i] < answers[j]
	})
	if len(answers) > 0 {
		overall.TopAnswer = answers[0]
	}
	return sources, overall, nil
}
