package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidFormat indicates the model answered with something other than the
// requested JSON object.
var ErrInvalidFormat = errors.New("ai returned invalid format")

const (
	minScore = 0.0
	maxScore = 10.0
)

const verdictSchema = `{
  "type": "object",
  "required": ["decision"],
  "properties": {
    "score_innovation": {"type": ["number", "string", "null"]},
    "score_impact": {"type": ["number", "string", "null"]},
    "justification": {"type": ["string", "null"]},
    "decision": {"type": "string"}
  }
}`

var compiledVerdictSchema = jsonschema.MustCompileString("verdict.json", verdictSchema)

// ParseVerdict extracts the first JSON object from a model reply and turns it
// into an EvaluationResult. Scores are clamped to [0, 10]; values that are
// missing or not finite become nil.
func ParseVerdict(content string) (EvaluationResult, error) {
	object, ok := extractJSONObject(content)
	if !ok {
		return EvaluationResult{}, fmt.Errorf("%w: no json object found", ErrInvalidFormat)
	}

	var generic interface{}
	if err := json.Unmarshal([]byte(object), &generic); err != nil {
		return EvaluationResult{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if err := compiledVerdictSchema.Validate(generic); err != nil {
		return EvaluationResult{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	fields, _ := generic.(map[string]interface{})

	result := EvaluationResult{
		ScoreInnovation: scoreValue(fields["score_innovation"]),
		ScoreImpact:     scoreValue(fields["score_impact"]),
		Decision:        strings.ToUpper(strings.TrimSpace(stringValue(fields["decision"]))),
	}

	result.Justification = strings.TrimSpace(stringValue(fields["justification"]))
	if result.Justification == "" {
		result.Justification = "No justification provided"
	}

	return result, nil
}

// IsDecisive reports whether the decision maps onto accept or reject.
func (r EvaluationResult) IsDecisive() bool {
	return r.Decision == DecisionAccepted || r.Decision == DecisionRejected
}

func extractJSONObject(content string) (string, bool) {
	for start := strings.IndexByte(content, '{'); start >= 0; {
		if end := matchBrace(content, start); end > 0 {
			candidate := content[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}

		next := strings.IndexByte(content[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace returns the index of the brace closing the one at start, or -1.
func matchBrace(content string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		ch := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func scoreValue(raw interface{}) *float64 {
	var value float64
	switch v := raw.(type) {
	case float64:
		value = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		value = parsed
	default:
		return nil
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	value = math.Max(minScore, math.Min(maxScore, value))
	return &value
}

func stringValue(raw interface{}) string {
	if s, ok := raw.(string); ok {
		return s
	}
	return ""
}
