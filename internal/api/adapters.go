package api

import (
	"github.com/propeval/propeval/internal/services"
)

// Adapters bridge the api Store to the narrow per-service store interfaces.
// Each adapter only converts types; ownership and validation stay in services.

var (
	_ services.EvaluationStore   = (*evaluationAdapter)(nil)
	_ services.QuestionStore     = (*questionAdapter)(nil)
	_ services.PropertyStore     = (*propertyAdapter)(nil)
	_ services.AuthStore         = (*authAdapter)(nil)
	_ services.AnalyticsStore    = (*analyticsAdapter)(nil)
	_ services.NotificationStore = (*notificationAdapter)(nil)
	_ services.ExportStore       = (*exportAdapter)(nil)
)

// --- converters ---

func convertProperty(p *Property) *services.Property {
	if p == nil {
		return nil
	}
	return &services.Property{ID: p.ID, TeamID: p.TeamID, Name: p.Name, Address: p.Address, CreatedAt: p.CreatedAt}
}

func convertPropertyBack(p *services.Property) *Property {
	return &Property{ID: p.ID, TeamID: p.TeamID, Name: p.Name, Address: p.Address, CreatedAt: p.CreatedAt}
}

func convertQuestion(q *Question) *services.EvaluationQuestion {
	if q == nil {
		return nil
	}
	return &services.EvaluationQuestion{
		ID:       q.ID,
		TeamID:   q.TeamID,
		Category: q.Category,
		Text:     q.Text,
		Weight:   q.Weight,
		IsActive: q.IsActive,
		Position: q.Position,
	}
}

func convertQuestionBack(q *services.EvaluationQuestion) *Question {
	return &Question{
		ID:       q.ID,
		TeamID:   q.TeamID,
		Category: q.Category,
		Text:     q.Text,
		Weight:   q.Weight,
		IsActive: q.IsActive,
		Position: q.Position,
	}
}

func convertChoice(c *AnswerChoice) *services.EvaluationAnswerChoice {
	if c == nil {
		return nil
	}
	return &services.EvaluationAnswerChoice{ID: c.ID, QuestionID: c.QuestionID, AnswerText: c.AnswerText, AnswerValue: c.AnswerValue}
}

func convertChoiceBack(c *services.EvaluationAnswerChoice) *AnswerChoice {
	return &AnswerChoice{ID: c.ID, QuestionID: c.QuestionID, AnswerText: c.AnswerText, AnswerValue: c.AnswerValue}
}

func convertCategoryScores(in []services.CategoryScore) []CategoryScore {
	out := make([]CategoryScore, 0, len(in))
	for _, cs := range in {
		out = append(out, CategoryScore{Category: cs.Category, Score: cs.Score, MaxScore: cs.MaxScore, Weight: cs.Weight})
	}
	return out
}

func convertCategoryScoresBack(in []CategoryScore) []services.CategoryScore {
	out := make([]services.CategoryScore, 0, len(in))
	for _, cs := range in {
		out = append(out, services.CategoryScore{Category: cs.Category, Score: cs.Score, MaxScore: cs.MaxScore, Weight: cs.Weight})
	}
	return out
}

func convertEvaluation(ev *Evaluation) *services.PropertyEvaluation {
	if ev == nil {
		return nil
	}
	return &services.PropertyEvaluation{
		PropertyID:     ev.PropertyID,
		TeamID:         ev.TeamID,
		TotalScore:     ev.TotalScore,
		StarRating:     ev.StarRating,
		CategoryScores: convertCategoryScoresBack(ev.CategoryScores),
		SubmittedAt:    ev.SubmittedAt,
	}
}

func convertEvaluationBack(ev *services.PropertyEvaluation) *Evaluation {
	return &Evaluation{
		PropertyID:     ev.PropertyID,
		TeamID:         ev.TeamID,
		TotalScore:     ev.TotalScore,
		StarRating:     ev.StarRating,
		CategoryScores: convertCategoryScores(ev.CategoryScores),
		SubmittedAt:    ev.SubmittedAt,
	}
}

func convertNotification(n *Notification) *services.Notification {
	if n == nil {
		return nil
	}
	return &services.Notification{ID: n.ID, TeamID: n.TeamID, Kind: n.Kind, Message: n.Message, Read: n.Read, CreatedAt: n.CreatedAt}
}

// --- evaluation ---

type evaluationAdapter struct{ store Store }

func (a *evaluationAdapter) GetProperty(id int64) (*services.Property, error) {
	return convertProperty(a.store.GetProperty(id)), nil
}

func (a *evaluationAdapter) ListQuestions(teamID string) ([]*services.EvaluationQuestion, error) {
	rows := a.store.ListQuestionsByTeam(teamID)
	out := make([]*services.EvaluationQuestion, 0, len(rows))
	for _, q := range rows {
		out = append(out, convertQuestion(q))
	}
	return out, nil
}

func (a *evaluationAdapter) ListChoices(questionID int64) ([]*services.EvaluationAnswerChoice, error) {
	rows := a.store.ListChoicesByQuestion(questionID)
	out := make([]*services.EvaluationAnswerChoice, 0, len(rows))
	for _, c := range rows {
		out = append(out, convertChoice(c))
	}
	return out, nil
}

func (a *evaluationAdapter) ReplaceEvaluation(ev *services.PropertyEvaluation, answers []*services.StoredAnswer) error {
	rows := make([]*EvaluationAnswer, 0, len(answers))
	for _, ans := range answers {
		rows = append(rows, &EvaluationAnswer{
			PropertyID:     ans.PropertyID,
			QuestionID:     ans.QuestionID,
			AnswerChoiceID: ans.AnswerChoiceID,
			CustomAnswer:   ans.CustomAnswer,
			AnswerValue:    ans.AnswerValue,
			SubmittedAt:    ans.SubmittedAt,
		})
	}
	a.store.ReplaceEvaluation(convertEvaluationBack(ev), rows)
	return nil
}

func (a *evaluationAdapter) GetEvaluation(propertyID int64) (*services.PropertyEvaluation, error) {
	return convertEvaluation(a.store.GetEvaluation(propertyID)), nil
}

func (a *evaluationAdapter) AddNotification(n *services.Notification) error {
	a.store.AddNotification(&Notification{ID: n.ID, TeamID: n.TeamID, Kind: n.Kind, Message: n.Message, Read: n.Read, CreatedAt: n.CreatedAt})
	return nil
}

// --- questions ---

type questionAdapter struct{ store Store }

func (a *questionAdapter) InsertQuestion(q *services.EvaluationQuestion) (*services.EvaluationQuestion, error) {
	row := convertQuestionBack(q)
	a.store.AddQuestion(row)
	return convertQuestion(row), nil
}

func (a *questionAdapter) GetQuestion(id int64) (*services.EvaluationQuestion, error) {
	return convertQuestion(a.store.GetQuestion(id)), nil
}

func (a *questionAdapter) UpdateQuestion(q *services.EvaluationQuestion) error {
	if !a.store.UpdateQuestion(convertQuestionBack(q)) {
		return services.NewNotFoundError("question not found")
	}
	return nil
}

func (a *questionAdapter) DeleteQuestion(id int64) error {
	if !a.store.DeleteQuestion(id) {
		return services.NewNotFoundError("question not found")
	}
	return nil
}

func (a *questionAdapter) ListQuestions(teamID string) ([]*services.EvaluationQuestion, error) {
	rows := a.store.ListQuestionsByTeam(teamID)
	out := make([]*services.EvaluationQuestion, 0, len(rows))
	for _, q := range rows {
		out = append(out, convertQuestion(q))
	}
	return out, nil
}

func (a *questionAdapter) InsertChoice(c *services.EvaluationAnswerChoice) (*services.EvaluationAnswerChoice, error) {
	row := convertChoiceBack(c)
	a.store.AddChoice(row)
	return convertChoice(row), nil
}

func (a *questionAdapter) GetChoice(id int64) (*services.EvaluationAnswerChoice, error) {
	return convertChoice(a.store.GetChoice(id)), nil
}

func (a *questionAdapter) UpdateChoice(c *services.EvaluationAnswerChoice) error {
	if !a.store.UpdateChoice(convertChoiceBack(c)) {
		return services.NewNotFoundError("choice not found")
	}
	return nil
}

func (a *questionAdapter) DeleteChoice(id int64) error {
	if !a.store.DeleteChoice(id) {
		return services.NewNotFoundError("choice not found")
	}
	return nil
}

func (a *questionAdapter) ListChoices(questionID int64) ([]*services.EvaluationAnswerChoice, error) {
	rows := a.store.ListChoicesByQuestion(questionID)
	out := make([]*services.EvaluationAnswerChoice, 0, len(rows))
	for _, c := range rows {
		out = append(out, convertChoice(c))
	}
	return out, nil
}

func (a *questionAdapter) AddAudit(entry services.AuditEntry) {
	a.store.AddAudit(AuditEntry{Time: entry.Time, Actor: entry.Actor, Action: entry.Action, Target: entry.Target, Note: entry.Note})
}

// --- properties ---

type propertyAdapter struct{ store Store }

func (a *propertyAdapter) InsertProperty(p *services.Property) (*services.Property, error) {
	row := convertPropertyBack(p)
	a.store.AddProperty(row)
	return convertProperty(row), nil
}

func (a *propertyAdapter) GetProperty(id int64) (*services.Property, error) {
	return convertProperty(a.store.GetProperty(id)), nil
}

func (a *propertyAdapter) UpdateProperty(p *services.Property) error {
	if !a.store.UpdateProperty(convertPropertyBack(p)) {
		return services.NewNotFoundError("property not found")
	}
	return nil
}

func (a *propertyAdapter) DeleteProperty(id int64) error {
	if !a.store.DeleteProperty(id) {
		return services.NewNotFoundError("property not found")
	}
	return nil
}

func (a *propertyAdapter) ListProperties(teamID string) ([]*services.Property, error) {
	rows := a.store.ListPropertiesByTeam(teamID)
	out := make([]*services.Property, 0, len(rows))
	for _, p := range rows {
		out = append(out, convertProperty(p))
	}
	return out, nil
}

func (a *propertyAdapter) AddAudit(entry services.AuditEntry) {
	a.store.AddAudit(AuditEntry{Time: entry.Time, Actor: entry.Actor, Action: entry.Action, Target: entry.Target, Note: entry.Note})
}

// --- auth ---

type authAdapter struct{ store Store }

func (a *authAdapter) FindUserByEmail(email string) (*services.User, error) {
	u := a.store.FindUserByEmail(email)
	if u == nil {
		return nil, nil
	}
	return &services.User{ID: u.ID, Email: u.Email, PassHash: u.PassHash, TeamID: u.TeamID, CreatedAt: u.CreatedAt}, nil
}

func (a *authAdapter) AddUser(u *services.User) error {
	a.store.AddUser(&User{ID: u.ID, Email: u.Email, PassHash: u.PassHash, TeamID: u.TeamID, CreatedAt: u.CreatedAt})
	return nil
}

func (a *authAdapter) AddTeam(t *services.Team) error {
	a.store.AddTeam(&Team{ID: t.ID, Name: t.Name})
	return nil
}

// --- analytics / notifications / export ---

type analyticsAdapter struct{ store Store }

func (a *analyticsAdapter) ListEvaluations(teamID string) ([]*services.PropertyEvaluation, error) {
	rows := a.store.ListEvaluationsByTeam(teamID)
	out := make([]*services.PropertyEvaluation, 0, len(rows))
	for _, ev := range rows {
		out = append(out, convertEvaluation(ev))
	}
	return out, nil
}

type notificationAdapter struct{ store Store }

func (a *notificationAdapter) ListNotifications(teamID string) ([]*services.Notification, error) {
	rows := a.store.ListNotificationsByTeam(teamID)
	out := make([]*services.Notification, 0, len(rows))
	for _, n := range rows {
		out = append(out, convertNotification(n))
	}
	return out, nil
}

func (a *notificationAdapter) GetNotification(id string) (*services.Notification, error) {
	return convertNotification(a.store.GetNotification(id)), nil
}

func (a *notificationAdapter) MarkNotificationRead(id string) error {
	if !a.store.MarkNotificationRead(id) {
		return services.NewNotFoundError("notification not found")
	}
	return nil
}

type exportAdapter struct{ store Store }

func (a *exportAdapter) ListEvaluations(teamID string) ([]*services.PropertyEvaluation, error) {
	return (&analyticsAdapter{store: a.store}).ListEvaluations(teamID)
}

func (a *exportAdapter) GetProperty(id int64) (*services.Property, error) {
	return convertProperty(a.store.GetProperty(id)), nil
}
