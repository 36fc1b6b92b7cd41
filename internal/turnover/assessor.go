// Package turnover combines the risk factors of a lease into a single
// turnover prediction. The reasoning service is consulted first; any failure
// there falls through to a deterministic prediction derived from the factor
// scores, so Assess always returns a usable result.
package turnover

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/matthewbaird/insights/internal/policy"
	"github.com/matthewbaird/insights/internal/reasoning"
	"github.com/matthewbaird/insights/internal/risk"
	"github.com/matthewbaird/insights/internal/types"
)

// Prediction sources.
const (
	SourceReasoning = "reasoning"
	SourceFallback  = "fallback"
)

// DefaultTimeout bounds one reasoning call.
const DefaultTimeout = 15 * time.Second

const missingReasoning = "The reasoning service returned no explanation."

// Timeframe cut-offs in days until expiry.
var timeframeBands = []struct {
	MaxDays   int
	Timeframe types.Timeframe
}{
	{30, types.TimeframeImmediate},
	{90, types.TimeframeShort},
	{180, types.TimeframeMedium},
}

// Config tunes an Assessor.
type Config struct {
	Timeout time.Duration
	Policy  policy.AssessmentPolicy
}

// Input is everything the assessor needs for one lease. A nil
// DaysUntilExpiry marks an open-ended lease.
type Input struct {
	Lease           types.Lease
	Factors         []types.RiskFactor
	DaysUntilExpiry *int
	Facts           []reasoning.Fact
}

// Assessor produces turnover predictions. A nil reasoning client means every
// prediction comes from the fallback.
type Assessor struct {
	client  reasoning.Client
	timeout time.Duration
	policy  policy.AssessmentPolicy
	log     *logrus.Logger
	nowFn   func() time.Time
}

// NewAssessor creates an Assessor.
func NewAssessor(client reasoning.Client, cfg Config, log *logrus.Logger) *Assessor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Assessor{
		client:  client,
		timeout: cfg.Timeout,
		policy:  cfg.Policy,
		log:     log,
		nowFn:   time.Now,
	}
}

// Assess returns the turnover prediction for one lease. It never fails:
// reasoning errors, timeouts and unusable responses produce the fallback.
func (a *Assessor) Assess(ctx context.Context, in Input) types.TurnoverPrediction {
	var pred types.TurnoverPrediction
	if a.client == nil {
		pred = Fallback(in.Factors, in.DaysUntilExpiry, a.policy)
	} else {
		res := a.reason(ctx, in)
		switch res.Kind {
		case reasoning.KindOK:
			pred = fromReasoning(res.Prediction)
		case reasoning.KindMalformed, reasoning.KindTimeout, reasoning.KindTransportError:
			a.log.WithFields(logrus.Fields{
				"lease_id": in.Lease.ID,
				"kind":     res.Kind.String(),
				"error":    errString(res.Err),
			}).Warn("reasoning unavailable, using fallback prediction")
			pred = Fallback(in.Factors, in.DaysUntilExpiry, a.policy)
		default:
			a.log.WithField("lease_id", in.Lease.ID).Warnf("unexpected reasoning result kind %d", int(res.Kind))
			pred = Fallback(in.Factors, in.DaysUntilExpiry, a.policy)
		}
	}

	pred.LeaseID = in.Lease.ID
	pred.DaysUntilExpiry = in.DaysUntilExpiry
	pred.Factors = in.Factors
	pred.GeneratedAt = a.nowFn()
	return pred
}

// reason makes the single bounded call. The result channel is buffered so a
// client that ignores cancellation cannot block the caller past the deadline.
func (a *Assessor) reason(ctx context.Context, in Input) reasoning.Result {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req := reasoning.Request{LeaseID: in.Lease.ID, Facts: in.Facts, Factors: in.Factors}
	done := make(chan reasoning.Result, 1)
	go func() { done <- a.client.Reason(ctx, req) }()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return reasoning.Timeout(ctx.Err())
	}
}

// Fallback derives a prediction from the mean factor score alone.
func Fallback(factors []types.RiskFactor, daysUntilExpiry *int, p policy.AssessmentPolicy) types.TurnoverPrediction {
	avg := risk.AverageScore(factors)
	pred := types.TurnoverPrediction{
		Confidence: types.ConfidenceLow,
		Timeframe:  timeframeForExpiry(daysUntilExpiry),
		Reasoning:  p.FallbackReasoning,
		Source:     SourceFallback,
	}
	switch {
	case avg < p.HighRiskBelow:
		pred.RiskLevel, pred.Probability = types.RiskHigh, p.HighProbability
	case avg < p.MediumRiskBelow:
		pred.RiskLevel, pred.Probability = types.RiskMedium, p.MediumProbability
	default:
		pred.RiskLevel, pred.Probability = types.RiskLow, p.LowProbability
	}
	return pred
}

// TimeframeFor maps days until lease expiry to a timeframe.
func TimeframeFor(days int) types.Timeframe {
	for _, b := range timeframeBands {
		if days <= b.MaxDays {
			return b.Timeframe
		}
	}
	return types.TimeframeLong
}

// timeframeForExpiry is TimeframeFor with an open-ended lease mapped to long.
func timeframeForExpiry(days *int) types.Timeframe {
	if days == nil {
		return types.TimeframeLong
	}
	return TimeframeFor(*days)
}

// fromReasoning normalises a parsed response: unknown or missing values take
// the medium defaults and probability is clamped to [0, 100].
func fromReasoning(p reasoning.Prediction) types.TurnoverPrediction {
	pred := types.TurnoverPrediction{
		RiskLevel:   types.RiskMedium,
		Confidence:  types.ConfidenceMedium,
		Probability: 50,
		Timeframe:   types.TimeframeMedium,
		Reasoning:   missingReasoning,
		Source:      SourceReasoning,
	}
	if p.TurnoverRisk != nil {
		switch lvl := types.RiskLevel(normalizeWord(*p.TurnoverRisk)); lvl {
		case types.RiskLow, types.RiskLowMedium, types.RiskMedium, types.RiskHigh:
			pred.RiskLevel = lvl
		}
	}
	if p.Confidence != nil {
		switch c := types.Confidence(normalizeWord(*p.Confidence)); c {
		case types.ConfidenceLow, types.ConfidenceMedium, types.ConfidenceHigh:
			pred.Confidence = c
		}
	}
	if p.Probability != nil {
		pred.Probability = clamp(*p.Probability, 0, 100)
	}
	if p.Timeframe != nil {
		switch tf := types.Timeframe(normalizeWord(*p.Timeframe)); tf {
		case types.TimeframeImmediate, types.TimeframeShort, types.TimeframeMedium, types.TimeframeLong:
			pred.Timeframe = tf
		}
	}
	if p.Reasoning != nil {
		pred.Reasoning = *p.Reasoning
	}
	return pred
}

func normalizeWord(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "_", "-")
}

func clamp(v, lo, hi float64) float64 {
	if v != v { // NaN
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
