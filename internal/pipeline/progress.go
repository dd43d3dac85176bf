package pipeline

// Step names reported in progress events
const (
	StepNormalize = "normalize"
	StepSegment   = "segment"
	StepFilter    = "filter"
	StepRetrieve  = "retrieve"
	StepClassify  = "classify"
	StepAggregate = "aggregate"
	StepPersist   = "persist"
	StepComplete  = "complete"
)

// ProgressEvent represents a progress update during a review
type ProgressEvent struct {
	Step        string `json:"step"`
	Message     string `json:"message"`
	ReviewID    string `json:"review_id,omitempty"`
	ClauseIndex *int   `json:"clause_index,omitempty"`
	Content     any    `json:"content,omitempty"`
}

// ProgressCallback is called when review progress occurs
type ProgressCallback func(event ProgressEvent)

// progress stamps events with the review ID before passing them on
type progress struct {
	cb       ProgressCallback
	reviewID string
}

func (p *progress) emit(step, message string, content any) {
	p.send(ProgressEvent{Step: step, Message: message, Content: content})
}

func (p *progress) emitClause(step string, index int, message string, content any) {
	p.send(ProgressEvent{Step: step, Message: message, ClauseIndex: &index, Content: content})
}

func (p *progress) send(ev ProgressEvent) {
	if p == nil || p.cb == nil {
		return
	}
	ev.ReviewID = p.reviewID
	p.cb(ev)
}
