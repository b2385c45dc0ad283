package services

import (
	"testing"
	"time"
)

type stubQuestionStore struct {
	questions map[int64]*EvaluationQuestion
	choices   map[int64]*EvaluationAnswerChoice
	nextID    int64
	audits    []AuditEntry
}

func newStubQuestionStore() *stubQuestionStore {
	return &stubQuestionStore{
		questions: map[int64]*EvaluationQuestion{},
		choices:   map[int64]*EvaluationAnswerChoice{},
	}
}

func (s *stubQuestionStore) InsertQuestion(q *EvaluationQuestion) (*EvaluationQuestion, error) {
	s.nextID++
	copy := *q
	copy.ID = s.nextID
	s.questions[copy.ID] = &copy
	return &copy, nil
}

func (s *stubQuestionStore) GetQuestion(id int64) (*EvaluationQuestion, error) {
	if q, ok := s.questions[id]; ok {
		copy := *q
		return &copy, nil
	}
	return nil, nil
}

func (s *stubQuestionStore) UpdateQuestion(q *EvaluationQuestion) error {
	if _, ok := s.questions[q.ID]; !ok {
		return NewNotFoundError("question not found")
	}
	copy := *q
	s.questions[q.ID] = &copy
	return nil
}

func (s *stubQuestionStore) DeleteQuestion(id int64) error {
	if _, ok := s.questions[id]; !ok {
		return NewNotFoundError("question not found")
	}
	delete(s.questions, id)
	return nil
}

func (s *stubQuestionStore) ListQuestions(teamID string) ([]*EvaluationQuestion, error) {
	out := []*EvaluationQuestion{}
	for _, q := range s.questions {
		if q.TeamID == teamID {
			copy := *q
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (s *stubQuestionStore) InsertChoice(c *EvaluationAnswerChoice) (*EvaluationAnswerChoice, error) {
	s.nextID++
	copy := *c
	copy.ID = s.nextID
	s.choices[copy.ID] = &copy
	return &copy, nil
}

func (s *stubQuestionStore) GetChoice(id int64) (*EvaluationAnswerChoice, error) {
	if c, ok := s.choices[id]; ok {
		copy := *c
		return &copy, nil
	}
	return nil, nil
}

func (s *stubQuestionStore) UpdateChoice(c *EvaluationAnswerChoice) error {
	if _, ok := s.choices[c.ID]; !ok {
		return NewNotFoundError("choice not found")
	}
	copy := *c
	s.choices[c.ID] = &copy
	return nil
}

func (s *stubQuestionStore) DeleteChoice(id int64) error {
	if _, ok := s.choices[id]; !ok {
		return NewNotFoundError("choice not found")
	}
	delete(s.choices, id)
	return nil
}

func (s *stubQuestionStore) ListChoices(questionID int64) ([]*EvaluationAnswerChoice, error) {
	out := []*EvaluationAnswerChoice{}
	for _, c := range s.choices {
		if c.QuestionID == questionID {
			copy := *c
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (s *stubQuestionStore) AddAudit(entry AuditEntry) {
	s.audits = append(s.audits, entry)
}

func TestCreateQuestionDefaultsAndValidation(t *testing.T) {
	store := newStubQuestionStore()
	svc := NewQuestionService(store)

	if _, err := svc.CreateQuestion("", &EvaluationQuestion{Category: "location", Text: "View?"}); err == nil {
		t.Fatalf("expected forbidden without team")
	}
	if _, err := svc.CreateQuestion("TEAM", &EvaluationQuestion{Text: "View?"}); err == nil {
		t.Fatalf("expected error for missing category")
	}
	if _, err := svc.CreateQuestion("TEAM", &EvaluationQuestion{Category: "location", Text: "View?", Weight: -3}); err == nil {
		t.Fatalf("expected error for negative weight")
	}

	q, err := svc.CreateQuestion("TEAM", &EvaluationQuestion{Category: "location", Text: "How is the view?"})
	if err != nil {
		t.Fatalf("CreateQuestion returned error: %v", err)
	}
	if q.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if q.Weight != 1 {
		t.Fatalf("default weight = %d, want 1", q.Weight)
	}
	if !q.IsActive {
		t.Fatalf("new questions should be active")
	}
}

func TestUpdateQuestionPartialAndRange(t *testing.T) {
	store := newStubQuestionStore()
	svc := NewQuestionService(store)
	q, err := svc.CreateQuestion("TEAM", &EvaluationQuestion{Category: "location", Text: "Noise?", Weight: 5})
	if err != nil {
		t.Fatalf("CreateQuestion returned error: %v", err)
	}

	if _, err := svc.UpdateQuestion("TEAM", q.ID, map[string]any{"weight": float64(0)}); err == nil {
		t.Fatalf("expected error for zero weight")
	}
	updated, err := svc.UpdateQuestion("TEAM", q.ID, map[string]any{"is_active": false, "weight": float64(8)})
	if err != nil {
		t.Fatalf("UpdateQuestion returned error: %v", err)
	}
	if updated.IsActive || updated.Weight != 8 {
		t.Fatalf("updated = %+v, want inactive with weight 8", updated)
	}
	if updated.Category != "location" {
		t.Fatalf("untouched fields must survive: %+v", updated)
	}

	if _, err := svc.UpdateQuestion("OTHER", q.ID, map[string]any{"weight": float64(2)}); err == nil {
		t.Fatalf("expected forbidden for foreign team")
	}
}

func TestDeleteQuestionAudits(t *testing.T) {
	store := newStubQuestionStore()
	svc := NewQuestionService(store)
	svc.now = func() time.Time { return time.Unix(0, 0) }
	q, _ := svc.CreateQuestion("TEAM", &EvaluationQuestion{Category: "condition", Text: "Roof?"})

	if err := svc.DeleteQuestion("TEAM", q.ID, "admin@example.com"); err != nil {
		t.Fatalf("DeleteQuestion returned error: %v", err)
	}
	if len(store.audits) != 1 || store.audits[0].Action != "delete_question" {
		t.Fatalf("audits = %+v", store.audits)
	}
	if err := svc.DeleteQuestion("TEAM", q.ID, "admin@example.com"); err == nil {
		t.Fatalf("expected not found for deleted question")
	}
}

func TestChoiceValidation(t *testing.T) {
	store := newStubQuestionStore()
	svc := NewQuestionService(store)
	q, _ := svc.CreateQuestion("TEAM", &EvaluationQuestion{Category: "efficiency", Text: "Heating?"})

	if _, err := svc.CreateChoice("TEAM", 999, &EvaluationAnswerChoice{AnswerText: "Good", AnswerValue: 80}); err == nil {
		t.Fatalf("expected not found for unknown question")
	}
	if _, err := svc.CreateChoice("TEAM", q.ID, &EvaluationAnswerChoice{AnswerText: "Too good", AnswerValue: 120}); err == nil {
		t.Fatalf("expected range error for value > 100")
	}
	if _, err := svc.CreateChoice("TEAM", q.ID, &EvaluationAnswerChoice{AnswerValue: 50}); err == nil {
		t.Fatalf("expected error for empty answer text")
	}

	c, err := svc.CreateChoice("TEAM", q.ID, &EvaluationAnswerChoice{AnswerText: "Modern", AnswerValue: 90})
	if err != nil {
		t.Fatalf("CreateChoice returned error: %v", err)
	}
	if c.ID == 0 || c.QuestionID != q.ID {
		t.Fatalf("choice = %+v", c)
	}

	if _, err := svc.UpdateChoice("TEAM", c.ID, map[string]any{"answer_value": float64(-1)}); err == nil {
		t.Fatalf("expected range error for negative value")
	}
	updated, err := svc.UpdateChoice("TEAM", c.ID, map[string]any{"answer_value": float64(65)})
	if err != nil {
		t.Fatalf("UpdateChoice returned error: %v", err)
	}
	if updated.AnswerValue != 65 {
		t.Fatalf("answer value = %d, want 65", updated.AnswerValue)
	}

	if err := svc.DeleteChoice("OTHER", c.ID); err == nil {
		t.Fatalf("expected forbidden for foreign team")
	}
	if err := svc.DeleteChoice("TEAM", c.ID); err != nil {
		t.Fatalf("DeleteChoice returned error: %v", err)
	}
}
