// Package normalize turns loosely typed NASA API payloads into stable domain records.
//
// Required fields that cannot be decoded produce a *domain.DecodeError naming the
// field path. Optional fields that fail to decode are dropped and reported as
// normalization issues (logged and counted) without failing the record.
package normalize

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"go-skydata/internal/domain"
	"go-skydata/internal/logger"
	"go-skydata/internal/metrics"
)

// Normalizer decodes raw response bodies. It holds no per-call state.
type Normalizer struct {
	log     logger.Logger
	metrics *metrics.Metrics
}

// New creates a Normalizer. A nil metrics uses a private registry.
func New(log logger.Logger, m *metrics.Metrics) *Normalizer {
	if log == nil {
		log = logger.NewNop()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	return &Normalizer{log: log, metrics: m}
}

// issue records an optional field that was dropped or a fallback that was taken
func (n *Normalizer) issue(endpoint domain.Endpoint, path, reason string) {
	n.metrics.NormalizationIssues.WithLabelValues(string(endpoint)).Inc()
	n.log.Warn("normalization issue",
		logger.String("endpoint", string(endpoint)),
		logger.String("field", path),
		logger.String("reason", reason),
	)
}

func missing(path string) error {
	return &domain.DecodeError{FieldPath: path, Reason: "required field missing"}
}

// decodeErr converts a json error into a DecodeError rooted at path
func decodeErr(path string, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := path
		if typeErr.Field != "" {
			field = joinPath(path, typeErr.Field)
		}
		return &domain.DecodeError{FieldPath: field, Reason: "expected " + typeErr.Type.String() + ", got " + typeErr.Value}
	}
	return &domain.DecodeError{FieldPath: path, Reason: err.Error()}
}

func joinPath(base, field string) string {
	if base == "" || base == "$" {
		return field
	}
	return base + "." + field
}

func requireString(path string, v *string) (string, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", missing(path)
	}
	return *v, nil
}

func requireDate(path string, v *string) (domain.Date, error) {
	s, err := requireString(path, v)
	if err != nil {
		return domain.Date{}, err
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return domain.Date{}, &domain.DecodeError{FieldPath: path, Reason: err.Error()}
	}
	return d, nil
}

func optionalString(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	s := *v
	return &s
}

// parseDecimal accepts a decimal encoded either as a JSON string or a JSON number.
// The value must be finite and non-negative.
func parseDecimal(raw json.RawMessage) (*float64, string) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, "missing"
	}
	text := string(raw)
	var s string
	if json.Unmarshal(raw, &s) == nil {
		text = strings.TrimSpace(s)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, "not a decimal: " + strconv.Quote(text)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil, "out of range: " + text
	}
	return &f, ""
}

// stringOrNumber reads an identifier that may be a JSON string or a JSON number
func stringOrNumber(raw json.RawMessage) (string, bool) {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s, s != ""
	}
	var num json.Number
	if json.Unmarshal(raw, &num) == nil {
		return num.String(), true
	}
	return "", false
}
