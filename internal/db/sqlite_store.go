package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/propeval/propeval/internal/api"
)

// SQLiteStore persists the full api.Store surface in a single sqlite file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

var _ api.Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("sqlite store: %s: %v", prefix, err)
	}
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func int64ToBool(v int64) bool { return v != 0 }

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func toNullInt64(v int64) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func encodeScores(in []api.CategoryScore) sql.NullString {
	if len(in) == 0 {
		return sql.NullString{}
	}
	b, err := json.Marshal(in)
	if err != nil {
		log.Printf("sqlite store: encode category scores: %v", err)
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

func decodeScores(ns sql.NullString) []api.CategoryScore {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	var out []api.CategoryScore
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		log.Printf("sqlite store: decode category scores: %v", err)
		return nil
	}
	return out
}

// --- properties ---

func (s *SQLiteStore) AddProperty(p *api.Property) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.Exec(`INSERT INTO properties(team_id, name, address, created_at) VALUES(?,?,?,?)`,
		p.TeamID, p.Name, toNullString(p.Address), formatTime(p.CreatedAt))
	if err != nil {
		s.logErr("AddProperty", err)
		return
	}
	id, err := res.LastInsertId()
	if err != nil {
		s.logErr("AddProperty: LastInsertId", err)
		return
	}
	p.ID = id
}

func (s *SQLiteStore) GetProperty(id int64) *api.Property {
	row := s.db.QueryRow(`SELECT id, team_id, name, COALESCE(address,''), created_at FROM properties WHERE id = ?`, id)
	var p api.Property
	var created string
	if err := row.Scan(&p.ID, &p.TeamID, &p.Name, &p.Address, &created); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logErr("GetProperty", err)
		}
		return nil
	}
	p.CreatedAt = parseTime(created)
	return &p
}

func (s *SQLiteStore) UpdateProperty(p *api.Property) bool {
	res, err := s.db.Exec(`UPDATE properties SET name = ?, address = ? WHERE id = ?`,
		p.Name, toNullString(p.Address), p.ID)
	if err != nil {
		s.logErr("UpdateProperty", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) DeleteProperty(id int64) bool {
	res, err := s.db.Exec(`DELETE FROM properties WHERE id = ?`, id)
	if err != nil {
		s.logErr("DeleteProperty", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) ListPropertiesByTeam(tid string) []*api.Property {
	rows, err := s.db.Query(`SELECT id, team_id, name, COALESCE(address,''), created_at FROM properties WHERE team_id = ? ORDER BY id`, tid)
	if err != nil {
		s.logErr("ListPropertiesByTeam: query", err)
		return nil
	}
	defer func() { s.logErr("ListPropertiesByTeam: rows.Close", rows.Close()) }()
	out := []*api.Property{}
	for rows.Next() {
		var p api.Property
		var created string
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name, &p.Address, &created); err != nil {
			s.logErr("ListPropertiesByTeam: scan", err)
			continue
		}
		p.CreatedAt = parseTime(created)
		out = append(out, &p)
	}
	s.logErr("ListPropertiesByTeam: rows.Err", rows.Err())
	return out
}

// --- questions ---

func (s *SQLiteStore) AddQuestion(q *api.Question) {
	res, err := s.db.Exec(`INSERT INTO questions(team_id, category, text, weight, is_active, position) VALUES(?,?,?,?,?,?)`,
		q.TeamID, q.Category, q.Text, q.Weight, boolToInt64(q.IsActive), q.Position)
	if err != nil {
		s.logErr("AddQuestion", err)
		return
	}
	id, err := res.LastInsertId()
	if err != nil {
		s.logErr("AddQuestion: LastInsertId", err)
		return
	}
	q.ID = id
}

func (s *SQLiteStore) GetQuestion(id int64) *api.Question {
	row := s.db.QueryRow(`SELECT id, team_id, category, text, weight, is_active, position FROM questions WHERE id = ?`, id)
	var q api.Question
	var active int64
	if err := row.Scan(&q.ID, &q.TeamID, &q.Category, &q.Text, &q.Weight, &active, &q.Position); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logErr("GetQuestion", err)
		}
		return nil
	}
	q.IsActive = int64ToBool(active)
	return &q
}

func (s *SQLiteStore) UpdateQuestion(q *api.Question) bool {
	res, err := s.db.Exec(`UPDATE questions SET category = ?, text = ?, weight = ?, is_active = ?, position = ? WHERE id = ?`,
		q.Category, q.Text, q.Weight, boolToInt64(q.IsActive), q.Position, q.ID)
	if err != nil {
		s.logErr("UpdateQuestion", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) DeleteQuestion(id int64) bool {
	if _, err := s.db.Exec(`DELETE FROM evaluation_answers WHERE question_id = ?`, id); err != nil {
		s.logErr("DeleteQuestion: answers", err)
	}
	res, err := s.db.Exec(`DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		s.logErr("DeleteQuestion", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) ListQuestionsByTeam(tid string) []*api.Question {
	rows, err := s.db.Query(`SELECT id, team_id, category, text, weight, is_active, position FROM questions WHERE team_id = ? ORDER BY position, id`, tid)
	if err != nil {
		s.logErr("ListQuestionsByTeam: query", err)
		return nil
	}
	defer func() { s.logErr("ListQuestionsByTeam: rows.Close", rows.Close()) }()
	out := []*api.Question{}
	for rows.Next() {
		var q api.Question
		var active int64
		if err := rows.Scan(&q.ID, &q.TeamID, &q.Category, &q.Text, &q.Weight, &active, &q.Position); err != nil {
			s.logErr("ListQuestionsByTeam: scan", err)
			continue
		}
		q.IsActive = int64ToBool(active)
		out = append(out, &q)
	}
	s.logErr("ListQuestionsByTeam: rows.Err", rows.Err())
	return out
}

// --- answer choices ---

func (s *SQLiteStore) AddChoice(c *api.AnswerChoice) {
	res, err := s.db.Exec(`INSERT INTO answer_choices(question_id, answer_text, answer_value) VALUES(?,?,?)`,
		c.QuestionID, c.AnswerText, c.AnswerValue)
	if err != nil {
		s.logErr("AddChoice", err)
		return
	}
	id, err := res.LastInsertId()
	if err != nil {
		s.logErr("AddChoice: LastInsertId", err)
		return
	}
	c.ID = id
}

func (s *SQLiteStore) GetChoice(id int64) *api.AnswerChoice {
	row := s.db.QueryRow(`SELECT id, question_id, answer_text, answer_value FROM answer_choices WHERE id = ?`, id)
	var c api.AnswerChoice
	if err := row.Scan(&c.ID, &c.QuestionID, &c.AnswerText, &c.AnswerValue); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logErr("GetChoice", err)
		}
		return nil
	}
	return &c
}

func (s *SQLiteStore) UpdateChoice(c *api.AnswerChoice) bool {
	res, err := s.db.Exec(`UPDATE answer_choices SET answer_text = ?, answer_value = ? WHERE id = ?`,
		c.AnswerText, c.AnswerValue, c.ID)
	if err != nil {
		s.logErr("UpdateChoice", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) DeleteChoice(id int64) bool {
	res, err := s.db.Exec(`DELETE FROM answer_choices WHERE id = ?`, id)
	if err != nil {
		s.logErr("DeleteChoice", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) ListChoicesByQuestion(questionID int64) []*api.AnswerChoice {
	rows, err := s.db.Query(`SELECT id, question_id, answer_text, answer_value FROM answer_choices WHERE question_id = ? ORDER BY id`, questionID)
	if err != nil {
		s.logErr("ListChoicesByQuestion: query", err)
		return nil
	}
	defer func() { s.logErr("ListChoicesByQuestion: rows.Close", rows.Close()) }()
	out := []*api.AnswerChoice{}
	for rows.Next() {
		var c api.AnswerChoice
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.AnswerText, &c.AnswerValue); err != nil {
			s.logErr("ListChoicesByQuestion: scan", err)
			continue
		}
		out = append(out, &c)
	}
	s.logErr("ListChoicesByQuestion: rows.Err", rows.Err())
	return out
}

// --- evaluations ---

// ReplaceEvaluation swaps the property's result and answer rows in one
// transaction so readers never observe a half-written resubmission.
func (s *SQLiteStore) ReplaceEvaluation(ev *api.Evaluation, answers []*api.EvaluationAnswer) {
	tx, err := s.db.Begin()
	if err != nil {
		s.logErr("ReplaceEvaluation: begin", err)
		return
	}
	commit := false
	defer func() {
		if !commit {
			s.logErr("ReplaceEvaluation: rollback", tx.Rollback())
		}
	}()
	if _, err := tx.Exec(`DELETE FROM evaluations WHERE property_id = ?`, ev.PropertyID); err != nil {
		s.logErr("ReplaceEvaluation: clear evaluation", err)
		return
	}
	if _, err := tx.Exec(`DELETE FROM evaluation_answers WHERE property_id = ?`, ev.PropertyID); err != nil {
		s.logErr("ReplaceEvaluation: clear answers", err)
		return
	}
	if _, err := tx.Exec(`INSERT INTO evaluations(property_id, team_id, total_score, star_rating, category_scores, submitted_at) VALUES(?,?,?,?,?,?)`,
		ev.PropertyID, ev.TeamID, ev.TotalScore, ev.StarRating, encodeScores(ev.CategoryScores), formatTime(ev.SubmittedAt)); err != nil {
		s.logErr("ReplaceEvaluation: insert evaluation", err)
		return
	}
	for _, ans := range answers {
		if _, err := tx.Exec(`INSERT INTO evaluation_answers(property_id, question_id, answer_choice_id, custom_answer, answer_value, submitted_at) VALUES(?,?,?,?,?,?)`,
			ans.PropertyID, ans.QuestionID, toNullInt64(ans.AnswerChoiceID), toNullString(ans.CustomAnswer), ans.AnswerValue, formatTime(ans.SubmittedAt)); err != nil {
			s.logErr("ReplaceEvaluation: insert answer", err)
			return
		}
	}
	if err := tx.Commit(); err != nil {
		s.logErr("ReplaceEvaluation: commit", err)
		return
	}
	commit = true
}

func (s *SQLiteStore) GetEvaluation(propertyID int64) *api.Evaluation {
	row := s.db.QueryRow(`SELECT property_id, team_id, total_score, star_rating, category_scores, submitted_at FROM evaluations WHERE property_id = ?`, propertyID)
	var ev api.Evaluation
	var scores sql.NullString
	var submitted string
	if err := row.Scan(&ev.PropertyID, &ev.TeamID, &ev.TotalScore, &ev.StarRating, &scores, &submitted); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logErr("GetEvaluation", err)
		}
		return nil
	}
	ev.CategoryScores = decodeScores(scores)
	ev.SubmittedAt = parseTime(submitted)
	return &ev
}

func (s *SQLiteStore) ListEvaluationsByTeam(tid string) []*api.Evaluation {
	rows, err := s.db.Query(`SELECT property_id, team_id, total_score, star_rating, category_scores, submitted_at FROM evaluations WHERE team_id = ? ORDER BY property_id`, tid)
	if err != nil {
		s.logErr("ListEvaluationsByTeam: query", err)
		return nil
	}
	defer func() { s.logErr("ListEvaluationsByTeam: rows.Close", rows.Close()) }()
	out := []*api.Evaluation{}
	for rows.Next() {
		var ev api.Evaluation
		var scores sql.NullString
		var submitted string
		if err := rows.Scan(&ev.PropertyID, &ev.TeamID, &ev.TotalScore, &ev.StarRating, &scores, &submitted); err != nil {
			s.logErr("ListEvaluationsByTeam: scan", err)
			continue
		}
		ev.CategoryScores = decodeScores(scores)
		ev.SubmittedAt = parseTime(submitted)
		out = append(out, &ev)
	}
	s.logErr("ListEvaluationsByTeam: rows.Err", rows.Err())
	return out
}

func (s *SQLiteStore) ListAnswersByProperty(propertyID int64) []*api.EvaluationAnswer {
	rows, err := s.db.Query(`SELECT property_id, question_id, COALESCE(answer_choice_id,0), COALESCE(custom_answer,''), answer_value, submitted_at FROM evaluation_answers WHERE property_id = ? ORDER BY question_id`, propertyID)
	if err != nil {
		s.logErr("ListAnswersByProperty: query", err)
		return nil
	}
	defer func() { s.logErr("ListAnswersByProperty: rows.Close", rows.Close()) }()
	out := []*api.EvaluationAnswer{}
	for rows.Next() {
		var ans api.EvaluationAnswer
		var submitted string
		if err := rows.Scan(&ans.PropertyID, &ans.QuestionID, &ans.AnswerChoiceID, &ans.CustomAnswer, &ans.AnswerValue, &submitted); err != nil {
			s.logErr("ListAnswersByProperty: scan", err)
			continue
		}
		ans.SubmittedAt = parseTime(submitted)
		out = append(out, &ans)
	}
	s.logErr("ListAnswersByProperty: rows.Err", rows.Err())
	return out
}

// --- notifications ---

func (s *SQLiteStore) AddNotification(n *api.Notification) {
	_, err := s.db.Exec(`INSERT INTO notifications(id, team_id, kind, message, read, created_at) VALUES(?,?,?,?,?,?)`,
		n.ID, n.TeamID, n.Kind, n.Message, boolToInt64(n.Read), formatTime(n.CreatedAt))
	s.logErr("AddNotification", err)
}

func (s *SQLiteStore) GetNotification(id string) *api.Notification {
	row := s.db.QueryRow(`SELECT id, team_id, kind, message, read, created_at FROM notifications WHERE id = ?`, id)
	var n api.Notification
	var read int64
	var created string
	if err := row.Scan(&n.ID, &n.TeamID, &n.Kind, &n.Message, &read, &created); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logErr("GetNotification", err)
		}
		return nil
	}
	n.Read = int64ToBool(read)
	n.CreatedAt = parseTime(created)
	return &n
}

func (s *SQLiteStore) MarkNotificationRead(id string) bool {
	res, err := s.db.Exec(`UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		s.logErr("MarkNotificationRead", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) ListNotificationsByTeam(tid string) []*api.Notification {
	rows, err := s.db.Query(`SELECT id, team_id, kind, message, read, created_at FROM notifications WHERE team_id = ? ORDER BY created_at DESC`, tid)
	if err != nil {
		s.logErr("ListNotificationsByTeam: query", err)
		return nil
	}
	defer func() { s.logErr("ListNotificationsByTeam: rows.Close", rows.Close()) }()
	out := []*api.Notification{}
	for rows.Next() {
		var n api.Notification
		var read int64
		var created string
		if err := rows.Scan(&n.ID, &n.TeamID, &n.Kind, &n.Message, &read, &created); err != nil {
			s.logErr("ListNotificationsByTeam: scan", err)
			continue
		}
		n.Read = int64ToBool(read)
		n.CreatedAt = parseTime(created)
		out = append(out, &n)
	}
	s.logErr("ListNotificationsByTeam: rows.Err", rows.Err())
	return out
}

// --- audit log ---

func (s *SQLiteStore) AddAudit(e api.AuditEntry) {
	_, err := s.db.Exec(`INSERT INTO audit_log(at, actor, action, target, note) VALUES(?,?,?,?,?)`,
		formatTime(e.Time), toNullString(e.Actor), e.Action, toNullString(e.Target), toNullString(e.Note))
	s.logErr("AddAudit", err)
}

func (s *SQLiteStore) ListAudit() []api.AuditEntry {
	rows, err := s.db.Query(`SELECT at, COALESCE(actor,''), action, COALESCE(target,''), COALESCE(note,'') FROM audit_log ORDER BY seq`)
	if err != nil {
		s.logErr("ListAudit: query", err)
		return nil
	}
	defer func() { s.logErr("ListAudit: rows.Close", rows.Close()) }()
	out := []api.AuditEntry{}
	for rows.Next() {
		var e api.AuditEntry
		var at string
		if err := rows.Scan(&at, &e.Actor, &e.Action, &e.Target, &e.Note); err != nil {
			s.logErr("ListAudit: scan", err)
			continue
		}
		e.Time = parseTime(at)
		out = append(out, e)
	}
	s.logErr("ListAudit: rows.Err", rows.Err())
	return out
}

// --- teams & users ---

func (s *SQLiteStore) AddTeam(t *api.Team) {
	_, err := s.db.Exec(`INSERT INTO teams(id, name) VALUES(?,?)`, t.ID, t.Name)
	s.logErr("AddTeam", err)
}

func (s *SQLiteStore) AddUser(u *api.User) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`INSERT INTO users(id, email, pass_hash, team_id, created_at) VALUES(?,?,?,?,?)`,
		u.ID, strings.ToLower(u.Email), u.PassHash, u.TeamID, formatTime(u.CreatedAt))
	s.logErr("AddUser", err)
}

func (s *SQLiteStore) FindUserByEmail(email string) *api.User {
	row := s.db.QueryRow(`SELECT id, email, pass_hash, team_id, created_at FROM users WHERE email = ?`, strings.ToLower(email))
	var u api.User
	var created string
	if err := row.Scan(&u.ID, &u.Email, &u.PassHash, &u.TeamID, &created); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logErr("FindUserByEmail", err)
		}
		return nil
	}
	u.CreatedAt = parseTime(created)
	return &u
}
