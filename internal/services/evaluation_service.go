package services

import (
	"errors"
	"fmt"
	"time"
)

// EvaluationStore abstracts persistence operations required by EvaluationService.
type EvaluationStore interface {
	GetProperty(id int64) (*Property, error)
	ListQuestions(teamID string) ([]*EvaluationQuestion, error)
	ListChoices(questionID int64) ([]*EvaluationAnswerChoice, error)
	ReplaceEvaluation(ev *PropertyEvaluation, answers []*StoredAnswer) error
	GetEvaluation(propertyID int64) (*PropertyEvaluation, error)
	AddNotification(n *Notification) error
}

// PropertyEvaluation is the persisted scoring result for a property. A
// resubmission replaces the previous rows for the same property id.
type PropertyEvaluation struct {
	PropertyID     int64           `json:"property_id"`
	TeamID         string          `json:"team_id,omitempty"`
	TotalScore     int             `json:"total_score"`
	StarRating     int             `json:"star_rating"`
	CategoryScores []CategoryScore `json:"category_scores"`
	SubmittedAt    time.Time       `json:"submitted_at"`
}

// StoredAnswer is one persisted answer row. AnswerChoiceID is 0 for free-text
// answers; AnswerValue is the resolved point value used during scoring.
type StoredAnswer struct {
	PropertyID     int64     `json:"property_id"`
	QuestionID     int64     `json:"question_id"`
	AnswerChoiceID int64     `json:"answer_choice_id,omitempty"`
	CustomAnswer   string    `json:"custom_answer,omitempty"`
	AnswerValue    int       `json:"answer_value"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

type Notification struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"team_id,omitempty"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmitEvaluationRequest transports the sanitized handler input into the service layer.
type SubmitEvaluationRequest struct {
	PropertyID int64
	Answers    []PropertyEvaluationAnswer
}

var (
	// ErrPropertyNotFound is returned when a submission references a missing property.
	ErrPropertyNotFound = errors.New("property not found")
	// ErrNoActiveQuestions indicates the owning team has no active questions to score against.
	ErrNoActiveQuestions = errors.New("no active evaluation questions configured")
)

// EvaluationService hosts the submission workflow: resolve the question
// catalogue, run the scoring engine, persist the breakdown with replace
// semantics and emit a notification.
type EvaluationService struct {
	store       EvaluationStore
	now         func() time.Time
	idGenerator func() string
}

func NewEvaluationService(store EvaluationStore) *EvaluationService {
	return &EvaluationService{
		store:       store,
		now:         func() time.Time { return time.Now().UTC() },
		idGenerator: func() string { return shortID(12) },
	}
}

func (s *EvaluationService) Submit(req SubmitEvaluationRequest) (*PropertyEvaluation, error) {
	if s.store == nil {
		return nil, errors.New("evaluation service store is nil")
	}
	if req.PropertyID <= 0 {
		return nil, NewInvalidError("property_id required")
	}
	property, err := s.store.GetProperty(req.PropertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}

	questions, err := s.store.ListQuestions(property.TeamID)
	if err != nil {
		return nil, err
	}
	choicesByQuestion := map[int64][]*EvaluationAnswerChoice{}
	activeCount := 0
	for _, q := range questions {
		if q == nil || !q.IsActive {
			continue
		}
		activeCount++
		choices, err := s.store.ListChoices(q.ID)
		if err != nil {
			return nil, err
		}
		choicesByQuestion[q.ID] = choices
	}
	if activeCount == 0 {
		return nil, ErrNoActiveQuestions
	}

	breakdown := ComputeBreakdown(req.Answers, questions, choicesByQuestion)

	submittedAt := s.now()
	ev := &PropertyEvaluation{
		PropertyID:     property.ID,
		TeamID:         property.TeamID,
		TotalScore:     breakdown.TotalScore,
		StarRating:     breakdown.StarRating,
		CategoryScores: breakdown.CategoryScores,
		SubmittedAt:    submittedAt,
	}
	rows := s.buildAnswerRows(req, questions, choicesByQuestion, submittedAt)
	if err := s.store.ReplaceEvaluation(ev, rows); err != nil {
		return nil, err
	}

	if err := s.store.AddNotification(&Notification{
		ID:        s.idGenerator(),
		TeamID:    property.TeamID,
		Kind:      "evaluation_submitted",
		Message:   fmt.Sprintf("%s scored %d (%d stars)", property.Name, ev.TotalScore, ev.StarRating),
		CreatedAt: submittedAt,
	}); err != nil {
		return nil, err
	}
	return ev, nil
}

// Get returns the stored breakdown for a property owned by the team.
func (s *EvaluationService) Get(teamID string, propertyID int64) (*PropertyEvaluation, error) {
	if teamID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	property, err := s.store.GetProperty(propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}
	if property.TeamID != teamID {
		return nil, NewForbiddenError("forbidden")
	}
	ev, err := s.store.GetEvaluation(propertyID)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, NewNotFoundError("evaluation not found")
	}
	return ev, nil
}

// buildAnswerRows keeps only answers the engine counted: those referencing an
// active question of the property's team.
func (s *EvaluationService) buildAnswerRows(req SubmitEvaluationRequest, questions []*EvaluationQuestion, choicesByQuestion map[int64][]*EvaluationAnswerChoice, submittedAt time.Time) []*StoredAnswer {
	active := make(map[int64]bool, len(questions))
	for _, q := range questions {
		if q != nil && q.IsActive {
			active[q.ID] = true
		}
	}
	rows := make([]*StoredAnswer, 0, len(req.Answers))
	for _, ans := range req.Answers {
		if !active[ans.QuestionID] {
			continue
		}
		row := &StoredAnswer{
			PropertyID:   req.PropertyID,
			QuestionID:   ans.QuestionID,
			CustomAnswer: ans.CustomAnswer,
			AnswerValue:  resolveAnswerValue(ans, choicesByQuestion[ans.QuestionID]),
			SubmittedAt:  submittedAt,
		}
		if ans.AnswerChoiceID != nil {
			row.AnswerChoiceID = *ans.AnswerChoiceID
		}
		rows = append(rows, row)
	}
	return rows
}
