// Package checker runs one provider check: validate the user's dataset, obtain
// the register, and join the two.
package checker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pfrederiksen/odpc-checker/internal/apperr"
	"github.com/pfrederiksen/odpc-checker/internal/dataset"
	"github.com/pfrederiksen/odpc-checker/internal/logger"
	"github.com/pfrederiksen/odpc-checker/internal/matcher"
	"github.com/pfrederiksen/odpc-checker/internal/registry"
)

// Service checks user datasets against a register Source
type Service struct {
	source registry.Source
	log    *logger.Logger
}

// Report is the outcome of one check
type Report struct {
	RunID      string            `json:"run_id"`
	Result     *matcher.Result   `json:"result"`
	Register   *registry.Dataset `json:"-"`
	RegisterAt time.Time         `json:"register_fetched_at"`
	Duration   time.Duration     `json:"duration"`
}

// New creates a Service. A nil logger uses the package default.
func New(source registry.Source, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{source: source, log: log}
}

// Check validates user, fetches the register and joins them.
//
// The user dataset is validated before any network call, so a missing
// Provider Name column fails fast. Fetch errors abort before the join.
func (s *Service) Check(ctx context.Context, user *dataset.Table, opts matcher.Options) (*Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	fields := logger.Fields{"run_id": runID}

	if err := matcher.ValidateUser(user); err != nil {
		fields["error"] = err.Error()
		s.log.Debug("Uploaded data rejected", fields)
		return nil, err
	}
	fields["user_rows"] = user.Len()

	reg, err := s.source.Fetch(ctx)
	if err != nil {
		fields["error"] = err.Error()
		s.log.Debug("Could not retrieve register", fields)
		return nil, fmt.Errorf("retrieving register: %w", err)
	}
	if reg == nil || reg.Table == nil || reg.Table.Len() == 0 {
		url := registry.RegisteredHandlersURL
		if reg != nil && reg.SourceURL != "" {
			url = reg.SourceURL
		}
		return nil, apperr.EmptyResult(url)
	}

	result, err := matcher.Match(user, reg.Table, opts)
	if err != nil {
		fields["error"] = err.Error()
		s.log.Debug("Match failed", fields)
		return nil, err
	}

	logger.AddCounter("match.rows", int64(len(result.Rows)))
	logger.AddCounter("match.matched", int64(result.MatchedCount))

	fields["matched"] = result.MatchedCount
	fields["unmatched"] = result.UnmatchedCount()
	fields["case_policy"] = string(result.CasePolicy)
	if result.DuplicateNames > 0 {
		fields["duplicate_register_names"] = result.DuplicateNames
	}
	s.log.Info("Matching complete", fields)

	return &Report{
		RunID:      runID,
		Result:     result,
		Register:   reg,
		RegisterAt: reg.FetchedAt,
		Duration:   time.Since(start),
	}, nil
}
