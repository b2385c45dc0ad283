package api

type Store interface {
	AddProperty(p *Property)
	GetProperty(id int64) *Property
	UpdateProperty(p *Property) bool
	DeleteProperty(id int64) bool
	ListPropertiesByTeam(tid string) []*Property

	AddQuestion(q *Question)
	GetQuestion(id int64) *Question
	UpdateQuestion(q *Question) bool
	DeleteQuestion(id int64) bool
	ListQuestionsByTeam(tid string) []*Question

	AddChoice(c *AnswerChoice)
	GetChoice(id int64) *AnswerChoice
	UpdateChoice(c *AnswerChoice) bool
	DeleteChoice(id int64) bool
	ListChoicesByQuestion(questionID int64) []*AnswerChoice

	ReplaceEvaluation(ev *Evaluation, answers []*EvaluationAnswer)
	GetEvaluation(propertyID int64) *Evaluation
	ListEvaluationsByTeam(tid string) []*Evaluation
	ListAnswersByProperty(propertyID int64) []*EvaluationAnswer

	AddNotification(n *Notification)
	GetNotification(id string) *Notification
	MarkNotificationRead(id string) bool
	ListNotificationsByTeam(tid string) []*Notification

	AddAudit(e AuditEntry)
	ListAudit() []AuditEntry

	AddTeam(t *Team)
	AddUser(u *User)
	FindUserByEmail(email string) *User
}

var _ Store = (*memoryStore)(nil)
