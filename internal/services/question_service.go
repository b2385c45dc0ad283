package services

import (
	"strconv"
	"strings"
	"time"
)

type QuestionStore interface {
	InsertQuestion(q *EvaluationQuestion) (*EvaluationQuestion, error)
	GetQuestion(id int64) (*EvaluationQuestion, error)
	UpdateQuestion(q *EvaluationQuestion) error
	DeleteQuestion(id int64) error
	ListQuestions(teamID string) ([]*EvaluationQuestion, error)

	InsertChoice(c *EvaluationAnswerChoice) (*EvaluationAnswerChoice, error)
	GetChoice(id int64) (*EvaluationAnswerChoice, error)
	UpdateChoice(c *EvaluationAnswerChoice) error
	DeleteChoice(id int64) error
	ListChoices(questionID int64) ([]*EvaluationAnswerChoice, error)

	AddAudit(entry AuditEntry)
}

// QuestionService owns the admin CRUD over evaluation questions and their
// answer choices. Weight and answer value ranges are validated here so the
// scoring engine never has to.
type QuestionService struct {
	store QuestionStore
	now   func() time.Time
}

func NewQuestionService(store QuestionStore) *QuestionService {
	return &QuestionService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *QuestionService) CreateQuestion(teamID string, q *EvaluationQuestion) (*EvaluationQuestion, error) {
	if teamID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	if q == nil {
		return nil, NewInvalidError("question required")
	}
	if strings.TrimSpace(q.Category) == "" {
		return nil, NewInvalidError("category required")
	}
	if strings.TrimSpace(q.Text) == "" {
		return nil, NewInvalidError("text required")
	}
	if q.Weight < 0 {
		return nil, NewInvalidError("weight must be positive")
	}
	if q.Weight == 0 {
		q.Weight = 1
	}
	q.TeamID = teamID
	q.IsActive = true
	created, err := s.store.InsertQuestion(q)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return q, nil
	}
	return created, nil
}

func (s *QuestionService) UpdateQuestion(teamID string, id int64, raw map[string]any) (*EvaluationQuestion, error) {
	old, err := s.ownedQuestion(teamID, id)
	if err != nil {
		return nil, err
	}
	updated := *old
	if v, ok := raw["category"].(string); ok && strings.TrimSpace(v) != "" {
		updated.Category = v
	}
	if v, ok := raw["text"].(string); ok && strings.TrimSpace(v) != "" {
		updated.Text = v
	}
	if v, ok := raw["weight"].(float64); ok {
		if v < 1 {
			return nil, NewInvalidError("weight must be positive")
		}
		updated.Weight = int(v)
	}
	if v, ok := raw["is_active"].(bool); ok {
		updated.IsActive = v
	}
	if v, ok := raw["position"].(float64); ok {
		updated.Position = int(v)
	}
	if err := s.store.UpdateQuestion(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteQuestion removes the question and, through the store, its choices and
// any stored answers referencing it.
func (s *QuestionService) DeleteQuestion(teamID string, id int64, actor string) error {
	if _, err := s.ownedQuestion(teamID, id); err != nil {
		return err
	}
	if err := s.store.DeleteQuestion(id); err != nil {
		return err
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "delete_question", Target: strconv.FormatInt(id, 10)})
	return nil
}

func (s *QuestionService) GetQuestion(teamID string, id int64) (*EvaluationQuestion, error) {
	return s.ownedQuestion(teamID, id)
}

func (s *QuestionService) ListQuestions(teamID string) ([]*EvaluationQuestion, error) {
	if teamID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	return s.store.ListQuestions(teamID)
}

func (s *QuestionService) CreateChoice(teamID string, questionID int64, c *EvaluationAnswerChoice) (*EvaluationAnswerChoice, error) {
	if _, err := s.ownedQuestion(teamID, questionID); err != nil {
		return nil, err
	}
	if c == nil {
		return nil, NewInvalidError("choice required")
	}
	if strings.TrimSpace(c.AnswerText) == "" {
		return nil, NewInvalidError("answer_text required")
	}
	if c.AnswerValue < 0 || c.AnswerValue > 100 {
		return nil, NewInvalidError("answer_value must be within 0..100")
	}
	c.QuestionID = questionID
	created, err := s.store.InsertChoice(c)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return c, nil
	}
	return created, nil
}

func (s *QuestionService) UpdateChoice(teamID string, id int64, raw map[string]any) (*EvaluationAnswerChoice, error) {
	old, err := s.store.GetChoice(id)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, NewNotFoundError("choice not found")
	}
	if _, err := s.ownedQuestion(teamID, old.QuestionID); err != nil {
		return nil, err
	}
	updated := *old
	if v, ok := raw["answer_text"].(string); ok && strings.TrimSpace(v) != "" {
		updated.AnswerText = v
	}
	if v, ok := raw["answer_value"].(float64); ok {
		if v < 0 || v > 100 {
			return nil, NewInvalidError("answer_value must be within 0..100")
		}
		updated.AnswerValue = int(v)
	}
	if err := s.store.UpdateChoice(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *QuestionService) DeleteChoice(teamID string, id int64) error {
	old, err := s.store.GetChoice(id)
	if err != nil {
		return err
	}
	if old == nil {
		return NewNotFoundError("choice not found")
	}
	if _, err := s.ownedQuestion(teamID, old.QuestionID); err != nil {
		return err
	}
	return s.store.DeleteChoice(id)
}

func (s *QuestionService) ListChoices(teamID string, questionID int64) ([]*EvaluationAnswerChoice, error) {
	if _, err := s.ownedQuestion(teamID, questionID); err != nil {
		return nil, err
	}
	return s.store.ListChoices(questionID)
}

func (s *QuestionService) ownedQuestion(teamID string, id int64) (*EvaluationQuestion, error) {
	if teamID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	q, err := s.store.GetQuestion(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, NewNotFoundError("question not found")
	}
	if q.TeamID != teamID {
		return nil, NewForbiddenError("forbidden")
	}
	return q, nil
}
