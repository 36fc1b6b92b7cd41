// Package worker contains background jobs that run against the analytics
// engine.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/matthewbaird/insights/internal/types"
)

// TurnoverAnalyzer runs a portfolio turnover analysis.
type TurnoverAnalyzer interface {
	AnalyzePortfolioTurnover(ctx context.Context, landlordID string) (types.PortfolioTurnoverAnalysis, error)
}

// SweepTimeout bounds one landlord's analysis within a sweep.
const SweepTimeout = 5 * time.Minute

// TurnoverSweep periodically analyzes a fixed set of portfolios and logs
// their critical and high priority actions.
type TurnoverSweep struct {
	analyzer  TurnoverAnalyzer
	landlords []string
	log       logrus.FieldLogger
}

// NewTurnoverSweep creates a new sweep over landlords.
func NewTurnoverSweep(analyzer TurnoverAnalyzer, landlords []string, log logrus.FieldLogger) *TurnoverSweep {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TurnoverSweep{analyzer: analyzer, landlords: landlords, log: log.WithField("worker", "turnover_sweep")}
}

// SweepResult summarises one pass.
type SweepResult struct {
	Landlords int
	Failed    int
	Urgent    int
}

// RunOnce analyzes every landlord in turn. A failing landlord is logged and
// skipped.
func (s *TurnoverSweep) RunOnce(ctx context.Context) SweepResult {
	var res SweepResult
	for _, id := range s.landlords {
		if ctx.Err() != nil {
			break
		}
		res.Landlords++
		lctx, cancel := context.WithTimeout(ctx, SweepTimeout)
		analysis, err := s.analyzer.AnalyzePortfolioTurnover(lctx, id)
		cancel()
		if err != nil {
			res.Failed++
			s.log.WithError(err).WithField("landlord_id", id).Error("turnover sweep failed")
			continue
		}

		for _, a := range analysis.PriorityActions {
			if a.Priority != types.PriorityCritical && a.Priority != types.PriorityHigh {
				continue
			}
			res.Urgent++
			entry := s.log.WithFields(logrus.Fields{
				"landlord_id": id,
				"analysis_id": analysis.AnalysisID,
				"lease_id":    a.LeaseID,
				"priority":    a.Priority,
			})
			if a.Priority == types.PriorityCritical {
				entry.Warn(a.Title)
			} else {
				entry.Info(a.Title)
			}
		}
		s.log.WithFields(logrus.Fields{
			"landlord_id": id,
			"leases":      analysis.TotalLeases,
			"high":        analysis.Breakdown.High,
			"medium":      analysis.Breakdown.Medium,
			"low":         analysis.Breakdown.Low,
			"unknown":     analysis.Breakdown.Unknown,
		}).Info("turnover sweep complete")
	}
	return res
}

// Run schedules the sweep with a standard five-field cron expression and
// blocks until ctx is done, then waits for a running pass to finish.
func (s *TurnoverSweep) Run(ctx context.Context, schedule string) error {
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	s.log.WithField("schedule", schedule).Info("turnover sweep scheduled")
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
