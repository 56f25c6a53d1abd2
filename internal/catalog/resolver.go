package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// SearchFailedError means no source could answer: at least one source
// failed with an error and none succeeded, so the book's existence could
// not be determined. Distinct from ErrNotFound, which is a confirmed
// absence.
type SearchFailedError struct {
	ISBN   string
	Errors map[string]error // per-source failure, keyed by source name
}

func (e *SearchFailedError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for name, err := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %v", name, err))
	}
	return fmt.Sprintf("catalog search failed for %s: %s", e.ISBN, strings.Join(parts, "; "))
}

// Resolver queries all configured sources concurrently and picks a winner
// by source priority (slice order), not by response order. A slower
// higher-priority source beats a faster lower-priority one as long as it
// succeeds within the budget.
type Resolver struct {
	sources       []Source
	sourceTimeout time.Duration
	budget        time.Duration
	logger        *slog.Logger
}

// NewResolver creates a resolver over the given sources in priority order.
func NewResolver(sources []Source, sourceTimeout, budget time.Duration, logger *slog.Logger) *Resolver {
	return &Resolver{
		sources:       sources,
		sourceTimeout: sourceTimeout,
		budget:        budget,
		logger:        logger,
	}
}

// outcome is one source's terminal result for a resolution attempt.
type outcome struct {
	record   *Record
	err      error
	notFound bool
}

// Lookup fans out to every source and returns the highest-priority usable
// record. All lookups share one absolute deadline derived from the budget;
// retries never extend it. Once a winner is decided the remaining lookups
// are cancelled.
//
// Returns ErrNotFound when every source confirmed absence, or a
// *SearchFailedError when at least one source failed and none succeeded.
func (r *Resolver) Lookup(ctx context.Context, isbn string) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.budget)
	defer cancel()

	n := len(r.sources)
	results := make([]*outcome, n)

	type indexed struct {
		idx int
		out *outcome
	}
	ch := make(chan indexed, n)

	for i, src := range r.sources {
		go func(idx int, src Source) {
			ch <- indexed{idx: idx, out: r.lookupOne(ctx, src, isbn)}
		}(i, src)
	}

	for range n {
		select {
		case res := <-ch:
			results[res.idx] = res.out
		case <-ctx.Done():
			// Budget exhausted or caller gone; sources that have not
			// answered count as timed out.
			for i := range results {
				if results[i] == nil {
					results[i] = &outcome{err: &SourceError{
						Source:    r.sources[i].Name(),
						Retryable: true,
						Err:       ctx.Err(),
					}}
				}
			}
			return r.decide(isbn, results)
		}

		// A success only wins once every higher-priority source has
		// reached a terminal non-success outcome.
		if rec, decided := winner(results); decided {
			return rec, nil
		}
	}

	return r.decide(isbn, results)
}

// lookupOne runs a single source under the per-source timeout, retrying
// once on a retryable failure with whatever budget remains.
func (r *Resolver) lookupOne(ctx context.Context, src Source, isbn string) *outcome {
	out := r.attempt(ctx, src, isbn)

	var srcErr *SourceError
	if out.err != nil && errors.As(out.err, &srcErr) && srcErr.Retryable && ctx.Err() == nil {
		r.logger.Debug("retrying catalog source",
			"source", src.Name(),
			"isbn", isbn,
			"error", srcErr.Err,
		)
		out = r.attempt(ctx, src, isbn)
	}

	return out
}

// attempt performs one bounded lookup and classifies the result.
func (r *Resolver) attempt(ctx context.Context, src Source, isbn string) *outcome {
	ctx, cancel := context.WithTimeout(ctx, r.sourceTimeout)
	defer cancel()

	rec, err := src.Lookup(ctx, isbn)
	switch {
	case err == nil:
		if !rec.Usable() {
			// A shell record without title/author cannot become a Book.
			return &outcome{notFound: true}
		}
		return &outcome{record: rec}
	case errors.Is(err, ErrNotFound):
		return &outcome{notFound: true}
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return &outcome{err: &SourceError{Source: src.Name(), Retryable: true, Err: err}}
	default:
		var srcErr *SourceError
		if errors.As(err, &srcErr) {
			return &outcome{err: srcErr}
		}
		// Unclassified transport errors are treated as retryable.
		return &outcome{err: &SourceError{Source: src.Name(), Retryable: true, Err: err}}
	}
}

// winner scans outcomes in priority order. It decides as soon as an
// unbroken prefix of terminal outcomes ends in a success; a pending
// higher-priority source always blocks a lower-priority success.
func winner(results []*outcome) (*Record, bool) {
	for _, out := range results {
		if out == nil {
			return nil, false
		}
		if out.record != nil {
			return out.record, true
		}
	}
	return nil, false
}

// decide aggregates terminal outcomes when no source succeeded.
func (r *Resolver) decide(isbn string, results []*outcome) (*Record, error) {
	if rec, ok := winner(results); ok {
		return rec, nil
	}

	failures := make(map[string]error)
	for i, out := range results {
		if out.err != nil {
			failures[r.sources[i].Name()] = out.err
		}
	}

	if len(failures) == 0 {
		// Every source confirmed absence.
		return nil, ErrNotFound
	}

	return nil, &SearchFailedError{ISBN: isbn, Errors: failures}
}
