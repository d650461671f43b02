package names

import (
	"context"
	"fmt"
	"log/slog"
)

// CandidateSource lists the player names seen in the odds store.
type CandidateSource interface {
	DistinctPlayers(ctx context.Context) ([]string, error)
}

// CanonicalStore is the player store reconciliation reads names from and writes aliases to.
type CanonicalStore interface {
	CanonicalNames(ctx context.Context) ([]string, error)
	SetAlternateName(ctx context.Context, canonical, alternate string) (int64, error)
}

// Result summarizes a reconciliation session.
type Result struct {
	Candidates int
	Canonical  int
	Unmatched  []Unmatched
	Accepted   int
	Rejected   int
	// Stopped is set when the decider asked to quit before all names were reviewed.
	Stopped bool
}

type Reconciler struct {
	source  CandidateSource
	store   CanonicalStore
	decider Decider
	logger  *slog.Logger
}

func NewReconciler(source CandidateSource, store CanonicalStore, decider Decider, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reconciler{source: source, store: store, decider: decider, logger: logger}
}

// Find loads both name sets and returns the unmatched candidates without asking anyone.
func (r *Reconciler) Find(ctx context.Context) (*Result, error) {
	candidates, err := r.source.DistinctPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load odds-store names: %w", err)
	}
	canonical, err := r.store.CanonicalNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("load canonical names: %w", err)
	}
	r.logger.Info("loaded names", "candidates", len(candidates), "canonical", len(canonical))

	res := &Result{
		Candidates: len(candidates),
		Canonical:  len(canonical),
		Unmatched:  FindUnmatched(candidates, canonical),
	}
	for _, u := range res.Unmatched {
		r.logger.Info("unmatched name", "name", u.Candidate, "closest", u.BestMatch, "similarity", u.Score)
	}
	return res, nil
}

// Run asks the decider about every unmatched name and records accepted aliases.
// A failed alias update aborts the session.
func (r *Reconciler) Run(ctx context.Context) (*Result, error) {
	res, err := r.Find(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Unmatched) == 0 {
		r.logger.Info("all odds-store names match a canonical name")
		return res, nil
	}

	for _, u := range res.Unmatched {
		if u.BestMatch == "" {
			res.Rejected++
			continue
		}
		decision, err := r.decider.Decide(ctx, u)
		if err != nil {
			return res, fmt.Errorf("decide %q: %w", u.Candidate, err)
		}
		switch decision {
		case Quit:
			res.Stopped = true
			r.logger.Info("reconciliation stopped by operator", "accepted", res.Accepted, "rejected", res.Rejected)
			return res, nil
		case Accept:
			n, err := r.store.SetAlternateName(ctx, u.BestMatch, u.Candidate)
			if err != nil {
				return res, err
			}
			if n == 0 {
				r.logger.Warn("no player matched, alias not stored", "name", u.Candidate, "closest", u.BestMatch)
				res.Rejected++
				continue
			}
			res.Accepted++
			r.logger.Info("stored alternate name", "alternate", u.Candidate, "player", u.BestMatch)
		default:
			res.Rejected++
			r.logger.Info("skipped name", "name", u.Candidate)
		}
	}
	r.logger.Info("reconciliation finished", "unmatched", len(res.Unmatched), "accepted", res.Accepted, "rejected", res.Rejected)
	return res, nil
}
