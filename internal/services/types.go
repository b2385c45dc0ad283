package services

import "time"

type EvaluationQuestion struct {
	ID       int64  `json:"id"`
	TeamID   string `json:"team_id,omitempty"`
	Category string `json:"category"`
	Text     string `json:"text"`
	Weight   int    `json:"weight"`
	IsActive bool   `json:"is_active"`
	Position int    `json:"position,omitempty"`
}

type EvaluationAnswerChoice struct {
	ID          int64  `json:"id"`
	QuestionID  int64  `json:"question_id"`
	AnswerText  string `json:"answer_text"`
	AnswerValue int    `json:"answer_value"`
}

// PropertyEvaluationAnswer is one submitted answer. Either AnswerChoiceID
// selects a choice belonging to the question, or CustomAnswer carries free
// text, which earns no points.
type PropertyEvaluationAnswer struct {
	QuestionID     int64  `json:"question_id"`
	AnswerChoiceID *int64 `json:"answer_choice_id,omitempty"`
	CustomAnswer   string `json:"custom_answer,omitempty"`
}

type CategoryScore struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
	MaxScore int    `json:"max_score"`
	Weight   int    `json:"weight"`
}

type QualityScoreBreakdown struct {
	CategoryScores []CategoryScore `json:"category_scores"`
	TotalScore     int             `json:"total_score"`
	StarRating     int             `json:"star_rating"`
}

type Property struct {
	ID        int64     `json:"id"`
	TeamID    string    `json:"team_id,omitempty"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type AuditEntry struct {
	Time   time.Time
	Actor  string
	Action string
	Target string
	Note   string
}
