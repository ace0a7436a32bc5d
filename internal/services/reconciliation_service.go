// Package services orchestrates the reconciliation workflow over the
// store and snapshot ports.
package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/dedupe"
	"bilancio/internal/ledger"
	applog "bilancio/internal/log"
	"bilancio/internal/reconcile"
	"bilancio/internal/snapshot"
	"bilancio/internal/store"
)

// ReviewPublisher sends near-duplicate groups out for manual confirmation.
type ReviewPublisher interface {
	PublishReviewRequest(ctx context.Context, msg *amqp.ReviewRequestMessage) error
}

// RunReport is the result of one reconciliation run. Every run is a pure
// computation over a fresh snapshot of the store; nothing is carried
// between runs.
type RunReport struct {
	TransactionCount int                 `json:"transaction_count"`
	Normalized       int                 `json:"normalized"`
	Balances         ledger.Balances     `json:"balances"`
	ExactDuplicates  []dedupe.Group      `json:"exact_duplicates"`
	NearDuplicates   []dedupe.Group      `json:"near_duplicates"`
	Findings         []reconcile.Finding `json:"findings"`
	RecordErrors     []string            `json:"record_errors,omitempty"`
}

type ReconciliationService struct {
	store     store.TransactionStore
	snapshots snapshot.Source
	reviews   ReviewPublisher
	accounts  *ledger.Accounts
	epsilon   core.Money
	lenient   bool
	log       *applog.Logger
}

// NewReconciliationService wires the workflow. snapshots and reviews may
// be nil: without snapshots the run skips reconciliation, without reviews
// near-duplicate groups only appear in the report.
func NewReconciliationService(st store.TransactionStore, snaps snapshot.Source, reviews ReviewPublisher, accounts *ledger.Accounts, epsilon core.Money, lenient bool) *ReconciliationService {
	return &ReconciliationService{
		store:     st,
		snapshots: snaps,
		reviews:   reviews,
		accounts:  accounts,
		epsilon:   epsilon,
		lenient:   lenient,
		log:       applog.Default(applog.ComponentReconcile),
	}
}

// Run executes the pipeline: fetch, normalize once, detect duplicates,
// aggregate, reconcile. Per-record failures are collected in the report
// next to the partial result instead of aborting the run.
func (s *ReconciliationService) Run(ctx context.Context) (*RunReport, error) {
	var (
		txs   []core.Transaction
		snaps []core.BalanceSnapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.store.List(gctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	if s.snapshots != nil {
		g.Go(func() error {
			var err error
			snaps, err = s.snapshots.Balances(gctx)
			if err != nil {
				return fmt.Errorf("read ground-truth snapshots: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Normalization happens here and only here, upstream of both the
	// detector and the aggregator.
	normalized, changed := core.NormalizeAll(txs)

	report := &RunReport{
		TransactionCount: len(normalized),
		Normalized:       changed,
		ExactDuplicates:  dedupe.FindDuplicates(normalized),
		NearDuplicates:   dedupe.FindNearDuplicates(normalized),
	}

	balances, recordErrs := ledger.ComputeBalances(normalized, ledger.Options{
		Accounts:  s.accounts,
		Lenient:   s.lenient,
		Composite: true,
	})
	report.Balances = balances
	for _, re := range recordErrs {
		report.RecordErrors = append(report.RecordErrors, re.Error())
	}

	if s.snapshots != nil {
		report.Findings = reconcile.Report(balances, snaps, s.epsilon)
	}

	if s.reviews != nil {
		if err := s.publishReviews(ctx, report.NearDuplicates); err != nil {
			// A dead review queue should not hide the run's results.
			s.log.ErrorContext(ctx, "Failed to publish review requests", applog.FieldError, err)
		}
	}

	s.log.InfoContext(ctx, "Reconciliation run complete",
		"transactions", report.TransactionCount,
		"normalized", report.Normalized,
		"exact_duplicate_groups", len(report.ExactDuplicates),
		"near_duplicate_groups", len(report.NearDuplicates),
		"record_errors", len(report.RecordErrors),
		"findings", len(report.Findings))

	return report, nil
}

func (s *ReconciliationService) publishReviews(ctx context.Context, groups []dedupe.Group) error {
	for _, g := range groups {
		msg := amqp.NewReviewRequestMessage(
			g.Key.Date, g.Key.Amount, g.IDs(),
			"same amount in the same week with differing descriptions")
		if err := s.reviews.PublishReviewRequest(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// RemoveDuplicates applies a deletion plan with a guarded delete: each id
// is re-read immediately before removal and skipped silently when already
// absent, so concurrent cleanups of a live store never fail each other.
func (s *ReconciliationService) RemoveDuplicates(ctx context.Context, ids []string) (removed, skipped int, err error) {
	for _, id := range ids {
		_, err := s.store.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			skipped++
			s.log.DebugContext(ctx, "Duplicate already absent, skipping", applog.FieldTxID, id)
			continue
		}
		if err != nil {
			return removed, skipped, fmt.Errorf("re-read transaction %s: %w", id, err)
		}
		n, err := s.store.RemoveByIDs(ctx, []string{id})
		if err != nil {
			return removed, skipped, fmt.Errorf("remove transaction %s: %w", id, err)
		}
		if n == 0 {
			skipped++
			continue
		}
		removed += n
	}
	s.log.InfoContext(ctx, "Duplicate removal applied", applog.FieldRemoved, removed, applog.FieldSkipped, skipped)
	return removed, skipped, nil
}
