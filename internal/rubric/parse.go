package rubric

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ahrav/go-gaucho/internal/domain"
	"github.com/ahrav/go-gaucho/internal/judge"
)

const resultSchemaURL = "https://gaucho.schemas.local/rubric/result.schema.json"

// resultSchema is the shape every rubric response must have before its
// values are coerced and range checked.
const resultSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["score", "message"],
	"properties": {
		"score": {"type": ["number", "string"]},
		"message": {"type": "string"}
	}
}`

var (
	compiledSchema = mustCompileSchema()
	validate       = validator.New(validator.WithRequiredStructEnabled())
)

func mustCompileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(resultSchemaURL, strings.NewReader(resultSchema)); err != nil {
		panic(fmt.Sprintf("rubric schema load failed: %v", err))
	}
	return c.MustCompile(resultSchemaURL)
}

// ParseResult validates the canonical judge output and returns the rubric
// result unmodified. The score coerces like an integer cast: numbers are
// truncated toward zero and decimal integer strings are accepted.
func ParseResult(canonical string) (domain.EvaluationResult, error) {
	var doc any
	if err := json.Unmarshal([]byte(judge.CleanJSON(canonical)), &doc); err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("%w: not JSON: %w", ErrInvalidResponse, err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return domain.EvaluationResult{}, schemaError(err)
	}

	obj := doc.(map[string]any)
	score, err := coerceScore(obj["score"])
	if err != nil {
		return domain.EvaluationResult{}, err
	}
	res := domain.EvaluationResult{Score: score, Message: obj["message"].(string)}

	if err := validate.Struct(res); err != nil {
		return domain.EvaluationResult{}, boundsError(res, err)
	}
	return res, nil
}

// coerceScore converts a JSON number or numeric string to an int.
func coerceScore(v any) (int, error) {
	switch s := v.(type) {
	case float64:
		t := math.Trunc(s)
		if t < math.MinInt32 || t > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %v", ErrScoreOutOfRange, s)
		}
		return int(t), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("%w: score %q is not an integer", ErrInvalidResponse, s)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: score has type %T", ErrInvalidResponse, v)
	}
}

// schemaError maps a schema violation to the matching sentinel.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) && hasKeyword(ve, "required") {
		return fmt.Errorf("%w: %s", ErrMissingField, ve.Error())
	}
	return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
}

func hasKeyword(ve *jsonschema.ValidationError, keyword string) bool {
	if strings.HasSuffix(ve.KeywordLocation, "/"+keyword) {
		return true
	}
	for _, c := range ve.Causes {
		if hasKeyword(c, keyword) {
			return true
		}
	}
	return false
}

// boundsError maps validator failures on EvaluationResult to sentinels.
func boundsError(res domain.EvaluationResult, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	for _, fe := range fieldErrs {
		switch fe.Field() {
		case "Score":
			return fmt.Errorf("%w: %d", ErrScoreOutOfRange, res.Score)
		case "Message":
			return fmt.Errorf("%w: %d characters", ErrMessageTooLong, res.MessageLength())
		}
	}
	return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
}
