// Package pipeline orchestrates a contract review from raw text to compliance report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jonathan/contract-review/internal/compliance"
	"github.com/jonathan/contract-review/internal/filtering"
	"github.com/jonathan/contract-review/internal/ingestion"
	"github.com/jonathan/contract-review/internal/report"
	"github.com/jonathan/contract-review/internal/retry"
	"github.com/jonathan/contract-review/internal/segmenting"
	"github.com/jonathan/contract-review/internal/types"
)

// DefaultPaceDelay is the wait after each classifier call
const DefaultPaceDelay = 250 * time.Millisecond

// ClauseClassifier classifies one clause
type ClauseClassifier interface {
	Classify(ctx context.Context, clauseText string, clauseIndex int) compliance.Outcome
}

// ReferenceRetriever finds legal passages for clauses
type ReferenceRetriever interface {
	Retrieve(ctx context.Context, clauses []types.ClauseRef) []types.ReferenceMatch
}

// ArtifactStore persists intermediate artifacts of a review
type ArtifactStore interface {
	SaveArtifact(ctx context.Context, reviewID string, name types.ArtifactName, content any) error
}

// Options configures a Reviewer
type Options struct {
	Classifier ClauseClassifier
	// Retriever is optional; without it no references are produced
	Retriever  ReferenceRetriever
	// Store is optional; without it artifacts are not persisted
	Store      ArtifactStore
	Filter     *filtering.Filter
	Segmenting segmenting.Options
	// PaceDelay is waited after every classifier call; zero disables pacing
	PaceDelay  time.Duration
	// Sleep defaults to retry.SleepContext
	Sleep      retry.SleepFunc
	OnProgress ProgressCallback
}

// Input is one contract to review
type Input struct {
	ReviewID   string
	FileName   string
	Header     string
	Text       string
	// OnProgress overrides Options.OnProgress for this review
	OnProgress ProgressCallback
}

// Result holds everything a review produced
type Result struct {
	ReviewID   string                 `json:"review_id,omitempty"`
	Sections   types.ContractSections `json:"sections"`
	Verdicts   []types.ClauseVerdict  `json:"verdicts"`
	References []types.ReferenceMatch `json:"references"`
	Report     types.ComplianceReport `json:"report"`
	Payload    types.ReportPayload    `json:"payload"`
	Clauses    int                    `json:"clauses"`
	Skipped    int                    `json:"skipped"`
	Classified int                    `json:"classified"`
	Unresolved []int                  `json:"unresolved"`
	Duration   time.Duration          `json:"duration"`
	PersistErr error                  `json:"-"`
}

// Reviewer runs the review pipeline
type Reviewer struct {
	opts Options
}

// NewReviewer creates a Reviewer. A classifier is required.
func NewReviewer(opts Options) (*Reviewer, error) {
	if opts.Classifier == nil {
		return nil, errors.New("pipeline: classifier is required")
	}
	if opts.Filter == nil {
		opts.Filter = filtering.NewDefault()
	}
	if opts.Sleep == nil {
		opts.Sleep = retry.SleepContext
	}
	return &Reviewer{opts: opts}, nil
}

// pendingClause is a clause that passed the filter, with its slot in the verdict list
type pendingClause struct {
	slot    int
	section types.ContractSection
}

// Review segments, filters, classifies and aggregates one contract.
// Clause failures never abort the run; cancellation does, and returns ctx.Err().
func (r *Reviewer) Review(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()
	cb := r.opts.OnProgress
	if in.OnProgress != nil {
		cb = in.OnProgress
	}
	p := &progress{cb: cb, reviewID: in.ReviewID}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := ingestion.NormalizeContractText(in.Text)
	if strings.TrimSpace(text) == "" {
		return nil, &InputError{Message: "contract text is empty", Cause: ingestion.ErrEmptyContract}
	}
	p.emit(StepNormalize, fmt.Sprintf("Normalized contract text (%d chars)", len([]rune(text))), nil)

	sections := types.ContractSections(segmenting.SegmentWith(text, r.opts.Segmenting))
	clauses := sections.Clauses()
	p.emit(StepSegment, fmt.Sprintf("Segmented contract into %d sections, %d clauses", len(sections), len(clauses)), sections)

	res := &Result{
		ReviewID:   in.ReviewID,
		Sections:   sections,
		References: []types.ReferenceMatch{},
		Clauses:    len(clauses),
		Unresolved: []int{},
	}

	slots := make([]*types.ClauseVerdict, len(clauses))
	var pending []pendingClause
	for i, section := range clauses {
		decision := r.opts.Filter.Classify(section)
		disposition, skip := decision.Disposition()
		if !skip {
			pending = append(pending, pendingClause{slot: i, section: section})
			continue
		}

		v, err := types.NewVerdict(section, disposition)
		if err != nil {
			return nil, err
		}
		slots[i] = &v
		res.Skipped++
		log.Printf("[PIPELINE] clause %d skipped: %s", section.Order, decision)
		p.emitClause(StepFilter, section.Order, fmt.Sprintf("Skipped clause %d (%s)", section.Order, decision), nil)
	}
	p.emit(StepFilter, fmt.Sprintf("%d clauses to classify, %d skipped", len(pending), res.Skipped), nil)

	if r.opts.Retriever != nil && len(pending) > 0 {
		queries := make([]types.ClauseRef, len(pending))
		for i, pc := range pending {
			queries[i] = types.ClauseRefFromSection(pc.section)
		}
		res.References = r.opts.Retriever.Retrieve(ctx, queries)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.emit(StepRetrieve, fmt.Sprintf("Retrieved %d legal references", len(res.References)), res.References)
	}

	for _, pc := range pending {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		idx := pc.section.Order
		out := r.opts.Classifier.Classify(ctx, pc.section.Text, idx)
		res.Classified++

		switch out.Kind {
		case compliance.Compliant:
			v, err := types.NewVerdict(pc.section, types.DispositionCompliant)
			if err != nil {
				return nil, err
			}
			slots[pc.slot] = &v
			p.emitClause(StepClassify, idx, fmt.Sprintf("Clause %d is compliant", idx), nil)
		case compliance.Problematic:
			v := types.NewProblematicVerdict(pc.section, out.Issue, out.Suggestion)
			slots[pc.slot] = &v
			p.emitClause(StepClassify, idx, fmt.Sprintf("Clause %d is problematic", idx), v)
		default:
			if ctx.Err() == nil {
				res.Unresolved = append(res.Unresolved, idx)
				log.Printf("[PIPELINE] clause %d unresolved after %d attempt(s): %v", idx, out.Attempts, out.Err)
				p.emitClause(StepClassify, idx, fmt.Sprintf("Clause %d could not be classified", idx), nil)
			}
		}

		if err := r.pace(ctx); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Verdicts = make([]types.ClauseVerdict, 0, len(slots))
	for _, v := range slots {
		if v != nil {
			res.Verdicts = append(res.Verdicts, *v)
		}
	}
	res.Report = report.Aggregate(res.Verdicts)
	res.Payload = report.Payload(res.Report)
	p.emit(StepAggregate, fmt.Sprintf("Found %d problematic clauses", res.Report.ProblematicCount), res.Payload)

	if r.opts.Store != nil {
		if err := r.persist(ctx, in.ReviewID, res); err != nil {
			res.PersistErr = err
			log.Printf("[PIPELINE] Warning: failed to persist artifacts: %v", err)
		} else {
			p.emit(StepPersist, "Saved review artifacts", nil)
		}
	}

	res.Duration = time.Since(start)
	p.emit(StepComplete, "Review complete", res.Payload)
	return res, nil
}

func (r *Reviewer) pace(ctx context.Context) error {
	if r.opts.PaceDelay <= 0 {
		return nil
	}
	return r.opts.Sleep(ctx, r.opts.PaceDelay)
}

func (r *Reviewer) persist(ctx context.Context, reviewID string, res *Result) error {
	artifacts := []struct {
		name    types.ArtifactName
		content any
	}{
		{types.ArtifactSections, res.Sections},
		{types.ArtifactReferences, res.References},
		{types.ArtifactIssues, res.Payload.Output},
	}

	var errs []error
	for _, a := range artifacts {
		if err := r.opts.Store.SaveArtifact(ctx, reviewID, a.name, a.content); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.name, err))
		}
	}
	return errors.Join(errs...)
}
