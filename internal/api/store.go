package api

import (
	"sort"
	"strings"
	"sync"
	"time"
)

type Property struct {
	ID        int64     `json:"id"`
	TeamID    string    `json:"team_id,omitempty"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type Question struct {
	ID       int64  `json:"id"`
	TeamID   string `json:"team_id,omitempty"`
	Category string `json:"category"`
	Text     string `json:"text"`
	Weight   int    `json:"weight"`
	IsActive bool   `json:"is_active"`
	Position int    `json:"position,omitempty"`
}

type AnswerChoice struct {
	ID          int64  `json:"id"`
	QuestionID  int64  `json:"question_id"`
	AnswerText  string `json:"answer_text"`
	AnswerValue int    `json:"answer_value"`
}

type CategoryScore struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
	MaxScore int    `json:"max_score"`
	Weight   int    `json:"weight"`
}

type Evaluation struct {
	PropertyID     int64           `json:"property_id"`
	TeamID         string          `json:"team_id,omitempty"`
	TotalScore     int             `json:"total_score"`
	StarRating     int             `json:"star_rating"`
	CategoryScores []CategoryScore `json:"category_scores"`
	SubmittedAt    time.Time       `json:"submitted_at"`
}

type EvaluationAnswer struct {
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

type AuditEntry struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target"`
	Note   string    `json:"note,omitempty"`
}

type Team struct{ ID, Name string }

type User struct {
	ID        string
	Email     string
	PassHash  []byte
	TeamID    string
	CreatedAt time.Time
}

type memoryStore struct {
	mu            sync.RWMutex
	nextID        int64
	properties    map[int64]*Property
	questions     map[int64]*Question
	choices       map[int64]*AnswerChoice
	evaluations   map[int64]*Evaluation
	answers       map[int64][]*EvaluationAnswer
	notifications map[string]*Notification
	teams         map[string]*Team
	usersByEmail  map[string]*User
	audit         []AuditEntry
}

// NewMemoryStore returns an in-memory Store used for development and tests.
func NewMemoryStore() Store { return newMemoryStore() }

func newMemoryStore() *memoryStore {
	return &memoryStore{
		properties:    map[int64]*Property{},
		questions:     map[int64]*Question{},
		choices:       map[int64]*AnswerChoice{},
		evaluations:   map[int64]*Evaluation{},
		answers:       map[int64][]*EvaluationAnswer{},
		notifications: map[string]*Notification{},
		teams:         map[string]*Team{},
		usersByEmail:  map[string]*User{},
		audit:         []AuditEntry{},
	}
}

func (s *memoryStore) assignID() int64 {
	s.nextID++
	return s.nextID
}

// --- properties ---

func (s *memoryStore) AddProperty(p *Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.assignID()
	}
	s.properties[p.ID] = p
}

func (s *memoryStore) GetProperty(id int64) *Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.properties[id]
}

func (s *memoryStore) UpdateProperty(p *Property) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.properties[p.ID]; !ok {
		return false
	}
	s.properties[p.ID] = p
	return true
}

func (s *memoryStore) DeleteProperty(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.properties[id]; !ok {
		return false
	}
	delete(s.properties, id)
	delete(s.evaluations, id)
	delete(s.answers, id)
	return true
}

func (s *memoryStore) ListPropertiesByTeam(tid string) []*Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Property{}
	for _, p := range s.properties {
		if p.TeamID == tid {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- questions & choices ---

func (s *memoryStore) AddQuestion(q *Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.ID == 0 {
		q.ID = s.assignID()
	}
	s.questions[q.ID] = q
}

func (s *memoryStore) GetQuestion(id int64) *Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.questions[id]
}

func (s *memoryStore) UpdateQuestion(q *Question) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[q.ID]; !ok {
		return false
	}
	s.questions[q.ID] = q
	return true
}

// DeleteQuestion cascades to the question's choices and any stored answers.
func (s *memoryStore) DeleteQuestion(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return false
	}
	delete(s.questions, id)
	for cid, c := range s.choices {
		if c.QuestionID == id {
			delete(s.choices, cid)
		}
	}
	for pid, rows := range s.answers {
		kept := make([]*EvaluationAnswer, 0, len(rows))
		for _, row := range rows {
			if row.QuestionID != id {
				kept = append(kept, row)
			}
		}
		s.answers[pid] = kept
	}
	return true
}

func (s *memoryStore) ListQuestionsByTeam(tid string) []*Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Question{}
	for _, q := range s.questions {
		if q.TeamID == tid {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position == out[j].Position {
			return out[i].ID < out[j].ID
		}
		return out[i].Position < out[j].Position
	})
	return out
}

func (s *memoryStore) AddChoice(c *AnswerChoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.assignID()
	}
	s.choices[c.ID] = c
}

func (s *memoryStore) GetChoice(id int64) *AnswerChoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.choices[id]
}

func (s *memoryStore) UpdateChoice(c *AnswerChoice) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.choices[c.ID]; !ok {
		return false
	}
	s.choices[c.ID] = c
	return true
}

func (s *memoryStore) DeleteChoice(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.choices[id]; !ok {
		return false
	}
	delete(s.choices, id)
	return true
}

func (s *memoryStore) ListChoicesByQuestion(questionID int64) []*AnswerChoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*AnswerChoice{}
	for _, c := range s.choices {
		if c.QuestionID == questionID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- evaluations ---

// ReplaceEvaluation overwrites any prior result and answer rows for the
// property (replace semantics, never append).
func (s *memoryStore) ReplaceEvaluation(ev *Evaluation, answers []*EvaluationAnswer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluations[ev.PropertyID] = ev
	s.answers[ev.PropertyID] = append([]*EvaluationAnswer(nil), answers...)
}

func (s *memoryStore) GetEvaluation(propertyID int64) *Evaluation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.evaluations[propertyID]
}

func (s *memoryStore) ListEvaluationsByTeam(tid string) []*Evaluation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Evaluation{}
	for _, ev := range s.evaluations {
		if ev.TeamID == tid {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PropertyID < out[j].PropertyID })
	return out
}

func (s *memoryStore) ListAnswersByProperty(propertyID int64) []*EvaluationAnswer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*EvaluationAnswer(nil), s.answers[propertyID]...)
}

// --- notifications ---

func (s *memoryStore) AddNotification(n *Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = n
}

func (s *memoryStore) GetNotification(id string) *Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notifications[id]
}

func (s *memoryStore) MarkNotificationRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return false
	}
	n.Read = true
	return true
}

func (s *memoryStore) ListNotificationsByTeam(tid string) []*Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Notification{}
	for _, n := range s.notifications {
		if n.TeamID == tid {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// --- audit log ---

func (s *memoryStore) AddAudit(e AuditEntry) {
	s.mu.Lock()
	s.audit = append(s.audit, e)
	s.mu.Unlock()
}

func (s *memoryStore) ListAudit() []AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AuditEntry, len(s.audit))
	copy(out, s.audit)
	return out
}

// --- teams & users ---

func (s *memoryStore) AddTeam(t *Team) { s.mu.Lock(); defer s.mu.Unlock(); s.teams[t.ID] = t }

func (s *memoryStore) AddUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usersByEmail[strings.ToLower(u.Email)] = u
}

func (s *memoryStore) FindUserByEmail(email string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usersByEmail[strings.ToLower(email)]
}
