// Package reasoning talks to the external natural-language reasoning service
// that enriches turnover predictions. Every call yields a tagged Result; the
// caller decides what to do with anything other than KindOK.
package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind tags the outcome of a reasoning call.
type Kind int

const (
	KindOK Kind = iota
	KindMalformed
	KindTimeout
	KindTransportError
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindMalformed:
		return "malformed"
	case KindTimeout:
		return "timeout"
	case KindTransportError:
		return "transport_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the outcome of one reasoning call. Prediction is only meaningful
// when Kind is KindOK; Err carries the cause otherwise.
type Result struct {
	Kind       Kind
	Prediction Prediction
	Raw        string
	Err        error
}

// OK wraps a parsed prediction.
func OK(p Prediction, raw string) Result { return Result{Kind: KindOK, Prediction: p, Raw: raw} }

// Malformed records a response that could not be used.
func Malformed(raw string, err error) Result { return Result{Kind: KindMalformed, Raw: raw, Err: err} }

// Timeout records a call that ran out of time.
func Timeout(err error) Result { return Result{Kind: KindTimeout, Err: err} }

// TransportError records a call that failed before a usable response arrived.
func TransportError(err error) Result { return Result{Kind: KindTransportError, Err: err} }

// Client is the reasoning collaborator.
type Client interface {
	Reason(ctx context.Context, req Request) Result
}

// Prediction is the JSON shape the service is asked to return. Fields are
// pointers so that absent values can be told apart from zero values.
type Prediction struct {
	TurnoverRisk *string  `json:"turnover_risk"`
	Confidence   *string  `json:"confidence"`
	Probability  *float64 `json:"probability"`
	Timeframe    *string  `json:"timeframe"`
	Reasoning    *string  `json:"reasoning"`
}

func (p Prediction) empty() bool {
	return p.TurnoverRisk == nil && p.Confidence == nil && p.Probability == nil &&
		p.Timeframe == nil && p.Reasoning == nil
}

// wirePrediction accepts probabilities sent as numbers or numeric strings
// such as "65" or "65%".
type wirePrediction struct {
	TurnoverRisk *string         `json:"turnover_risk"`
	Confidence   *string         `json:"confidence"`
	Probability  json.RawMessage `json:"probability"`
	Timeframe    *string         `json:"timeframe"`
	Reasoning    *string         `json:"reasoning"`
}

var errNoObject = errors.New("response contains no JSON object")

// Parse extracts a Prediction from a raw model response. Markdown code fences
// and surrounding prose are tolerated; anything that does not decode into at
// least one known field is Malformed.
func Parse(raw string) Result {
	body := strings.TrimSpace(raw)
	start := strings.IndexByte(body, '{')
	end := strings.LastIndexByte(body, '}')
	if start < 0 || end < start {
		return Malformed(raw, errNoObject)
	}

	var w wirePrediction
	if err := json.Unmarshal([]byte(body[start:end+1]), &w); err != nil {
		return Malformed(raw, fmt.Errorf("decode prediction: %w", err))
	}
	p := Prediction{
		TurnoverRisk: trimmed(w.TurnoverRisk),
		Confidence:   trimmed(w.Confidence),
		Timeframe:    trimmed(w.Timeframe),
		Reasoning:    trimmed(w.Reasoning),
	}
	if len(w.Probability) > 0 && !bytes.Equal(w.Probability, []byte("null")) {
		prob, err := parseProbability(w.Probability)
		if err != nil {
			return Malformed(raw, err)
		}
		p.Probability = &prob
	}
	if p.empty() {
		return Malformed(raw, errors.New("response has none of the expected fields"))
	}
	return OK(p, raw)
}

func parseProbability(msg json.RawMessage) (float64, error) {
	var n float64
	if err := json.Unmarshal(msg, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return 0, fmt.Errorf("probability: unexpected value %s", msg)
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("probability: %w", err)
	}
	return n, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
