package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/contract-review/internal/compliance"
	"github.com/jonathan/contract-review/internal/ingestion"
	"github.com/jonathan/contract-review/internal/retry"
	"github.com/jonathan/contract-review/internal/segmenting"
	"github.com/jonathan/contract-review/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleContract = `CONTRAT DE TRAVAIL
Identité du salarié : Nom: Jean Dupont, CIN: AB123456, Téléphone: 0612345678
Article 1 : La période d'essai est fixée à douze mois renouvelable une fois.
Article 2 : Le salarié s'engage à respecter un préavis de deux mois en cas de démission.
Article 3 : La durée hebdomadaire du travail est fixée à 44 heures réparties sur six jours.
HORAIRES ET RÉMUNÉRATION
Le salaire est versé mensuellement.`

// fakeClassifier answers by keyword
type fakeClassifier struct {
	mu      sync.Mutex
	indices []int
	onCall  func()
}

func (f *fakeClassifier) Classify(_ context.Context, text string, index int) compliance.Outcome {
	f.mu.Lock()
	f.indices = append(f.indices, index)
	f.mu.Unlock()
	if f.onCall != nil {
		f.onCall()
	}

	switch {
	case strings.Contains(text, "douze mois"):
		return compliance.Outcome{Kind: compliance.Problematic, Issue: "Période d'essai excessive", Suggestion: "Limiter à trois mois", Attempts: 1}
	case strings.Contains(text, "préavis"):
		return compliance.Outcome{Kind: compliance.Compliant, Attempts: 1}
	default:
		return compliance.Outcome{Kind: compliance.Unresolved, Attempts: 3, Err: errors.New("timeout")}
	}
}

type fakeRetriever struct {
	queries []types.ClauseRef
}

func (f *fakeRetriever) Retrieve(_ context.Context, clauses []types.ClauseRef) []types.ReferenceMatch {
	f.queries = clauses
	return []types.ReferenceMatch{{Title: "13. PÉRIODE D'ESSAI", Text: "La période d'essai ne peut excéder trois mois."}}
}

type memStore struct {
	saved map[types.ArtifactName]any
	ids   []string
	err   error
}

func (m *memStore) SaveArtifact(_ context.Context, reviewID string, name types.ArtifactName, content any) error {
	if m.err != nil {
		return m.err
	}
	if m.saved == nil {
		m.saved = make(map[types.ArtifactName]any)
	}
	m.saved[name] = content
	m.ids = append(m.ids, reviewID)
	return nil
}

func newTestReviewer(t *testing.T, opts Options) (*Reviewer, *retry.Recorder) {
	t.Helper()
	rec := &retry.Recorder{}
	if opts.Classifier == nil {
		opts.Classifier = &fakeClassifier{}
	}
	opts.Sleep = rec.Sleep
	if opts.PaceDelay == 0 {
		opts.PaceDelay = DefaultPaceDelay
	}
	r, err := NewReviewer(opts)
	require.NoError(t, err)
	return r, rec
}

func TestReview_FullRun(t *testing.T) {
	classifier := &fakeClassifier{}
	retriever := &fakeRetriever{}
	store := &memStore{}
	r, rec := newTestReviewer(t, Options{Classifier: classifier, Retriever: retriever, Store: store})

	res, err := r.Review(context.Background(), Input{ReviewID: "rev-1", Text: sampleContract})
	require.NoError(t, err)

	require.Len(t, res.Sections, 6)
	assert.Equal(t, 4, res.Clauses)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 3, res.Classified)
	assert.Equal(t, []int{4}, res.Unresolved)

	require.Len(t, res.Verdicts, 3)
	assert.Equal(t, types.DispositionSkippedPersonalInfo, res.Verdicts[0].Disposition)
	assert.Equal(t, 1, res.Verdicts[0].Index)
	assert.Equal(t, types.DispositionProblematic, res.Verdicts[1].Disposition)
	assert.Equal(t, 2, res.Verdicts[1].Index)
	assert.Equal(t, types.DispositionCompliant, res.Verdicts[2].Disposition)
	assert.Equal(t, 3, res.Verdicts[2].Index)

	assert.Equal(t, 1, res.Report.ProblematicCount)
	assert.Equal(t, "ok", res.Payload.Status)
	require.Len(t, res.Payload.Output, 1)
	assert.Equal(t, 2, res.Payload.Output[0].ClauseIndex)
	assert.Equal(t, "Période d'essai excessive", res.Payload.Output[0].Issue)

	// classified in section order, with the section order as index
	assert.Equal(t, []int{2, 3, 4}, classifier.indices)
	assert.Equal(t, []time.Duration{DefaultPaceDelay, DefaultPaceDelay, DefaultPaceDelay}, rec.Delays)

	require.Len(t, retriever.queries, 3)
	assert.Equal(t, 2, retriever.queries[0].Index)
	assert.Len(t, res.References, 1)

	assert.NoError(t, res.PersistErr)
	assert.Contains(t, store.saved, types.ArtifactSections)
	assert.Contains(t, store.saved, types.ArtifactReferences)
	assert.Contains(t, store.saved, types.ArtifactIssues)
	assert.Equal(t, []string{"rev-1", "rev-1", "rev-1"}, store.ids)
}

func TestReview_VerdictsMatchSections(t *testing.T) {
	r, _ := newTestReviewer(t, Options{})

	res, err := r.Review(context.Background(), Input{Text: sampleContract})
	require.NoError(t, err)

	for _, v := range res.Verdicts {
		s := res.Sections[v.Index]
		assert.Equal(t, s.Text, v.Text)
		assert.Equal(t, types.TitleClause, s.Title)
		assert.Equal(t, v.IsProblematic(), v.Issue != nil)
	}
}

func TestReview_TrivialClauses(t *testing.T) {
	classifier := &fakeClassifier{}
	r, _ := newTestReviewer(t, Options{
		Classifier: classifier,
		Segmenting: segmenting.Options{HeadingWordLimit: 2},
	})

	res, err := r.Review(context.Background(), Input{Text: "CONTRAT DE TRAVAIL\nCONDITIONS PARTICULIÈRES DU POSTE"})
	require.NoError(t, err)

	require.Len(t, res.Verdicts, 2)
	for _, v := range res.Verdicts {
		assert.Equal(t, types.DispositionSkippedTrivial, v.Disposition)
	}
	assert.Empty(t, classifier.indices)
	assert.Equal(t, 0, res.Report.ProblematicCount)
}

func TestReview_EmptyInput(t *testing.T) {
	classifier := &fakeClassifier{}
	r, _ := newTestReviewer(t, Options{Classifier: classifier})

	for _, text := range []string{"", "   \n\t\n", "⚠\n"} {
		res, err := r.Review(context.Background(), Input{Text: text})
		assert.Nil(t, res)

		var inputErr *InputError
		require.ErrorAs(t, err, &inputErr)
		assert.ErrorIs(t, err, ingestion.ErrEmptyContract)
	}
	assert.Empty(t, classifier.indices)
}

func TestReview_NoClauses(t *testing.T) {
	r, _ := newTestReviewer(t, Options{})

	res, err := r.Review(context.Background(), Input{Text: "EMPLOYEUR\nSociété Atlas"})
	require.NoError(t, err)

	assert.Equal(t, 0, res.Clauses)
	assert.Empty(t, res.Verdicts)
	assert.NotNil(t, res.Payload.Output)
	assert.Equal(t, 0, res.Payload.ProblematicCount)
}

func TestReview_CancelledBetweenClauses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	classifier := &fakeClassifier{onCall: cancel}
	store := &memStore{}
	r, _ := newTestReviewer(t, Options{Classifier: classifier, Store: store})

	res, err := r.Review(ctx, Input{Text: sampleContract})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, classifier.indices, 1)
	assert.Empty(t, store.saved)
}

func TestReview_PersistFailureKeepsReport(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	r, _ := newTestReviewer(t, Options{Store: store})

	res, err := r.Review(context.Background(), Input{Text: sampleContract})
	require.NoError(t, err)

	assert.Error(t, res.PersistErr)
	assert.Contains(t, res.PersistErr.Error(), "disk full")
	assert.Equal(t, 1, res.Report.ProblematicCount)
}

func TestReview_ProgressEvents(t *testing.T) {
	var steps []string
	var clauseEvents int
	r, _ := newTestReviewer(t, Options{
		Retriever: &fakeRetriever{},
		OnProgress: func(ev ProgressEvent) {
			steps = append(steps, ev.Step)
			if ev.ClauseIndex != nil {
				clauseEvents++
			}
			assert.Equal(t, "rev-9", ev.ReviewID)
		},
	})

	_, err := r.Review(context.Background(), Input{ReviewID: "rev-9", Text: sampleContract})
	require.NoError(t, err)

	require.NotEmpty(t, steps)
	assert.Equal(t, StepNormalize, steps[0])
	assert.Equal(t, StepComplete, steps[len(steps)-1])
	assert.Contains(t, steps, StepRetrieve)
	assert.Contains(t, steps, StepAggregate)
	assert.Equal(t, 4, clauseEvents)
}

func TestReview_NoPacing(t *testing.T) {
	rec := &retry.Recorder{}
	r, err := NewReviewer(Options{Classifier: &fakeClassifier{}, Sleep: rec.Sleep})
	require.NoError(t, err)

	_, err = r.Review(context.Background(), Input{Text: sampleContract})
	require.NoError(t, err)
	assert.Empty(t, rec.Delays)
}

func TestNewReviewer_RequiresClassifier(t *testing.T) {
	_, err := NewReviewer(Options{})
	assert.Error(t, err)
}

func TestInputError(t *testing.T) {
	err := &InputError{Message: "contract text is empty", Cause: ingestion.ErrEmptyContract}
	assert.Contains(t, err.Error(), "invalid input: contract text is empty")
	assert.ErrorIs(t, err, ingestion.ErrEmptyContract)
}

func TestReview_InputProgressOverride(t *testing.T) {
	var fromOptions, fromInput int
	r, _ := newTestReviewer(t, Options{OnProgress: func(ProgressEvent) { fromOptions++ }})

	_, err := r.Review(context.Background(), Input{
		Text:       sampleContract,
		OnProgress: func(ProgressEvent) { fromInput++ },
	})
	require.NoError(t, err)
	assert.Zero(t, fromOptions)
	assert.Positive(t, fromInput)
}

func TestReview_RetrievesBeforeClassifying(t *testing.T) {
	retriever := &fakeRetriever{}
	classifier := &fakeClassifier{}
	var retrieved []bool
	classifier.onCall = func() { retrieved = append(retrieved, retriever.queries != nil) }

	var steps []string
	r, _ := newTestReviewer(t, Options{
		Classifier: classifier,
		Retriever:  retriever,
		OnProgress: func(ev ProgressEvent) { steps = append(steps, ev.Step) },
	})

	_, err := r.Review(context.Background(), Input{Text: sampleContract})
	require.NoError(t, err)

	assert.Equal(t, []bool{true, true, true}, retrieved)
	retrieveAt, classifyAt := -1, -1
	for i, s := range steps {
		if s == StepRetrieve && retrieveAt < 0 {
			retrieveAt = i
		}
		if s == StepClassify && classifyAt < 0 {
			classifyAt = i
		}
	}
	require.GreaterOrEqual(t, retrieveAt, 0)
	require.GreaterOrEqual(t, classifyAt, 0)
	assert.Less(t, retrieveAt, classifyAt)
}
