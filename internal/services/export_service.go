package services

import "time"

type ExportStore interface {
	ListEvaluations(teamID string) ([]*PropertyEvaluation, error)
	GetProperty(id int64) (*Property, error)
}

type ExportService struct {
	store ExportStore
}

func NewExportService(store ExportStore) *ExportService {
	return &ExportService{store: store}
}

// EvaluationsCSV renders the team's evaluations in long format.
func (s *ExportService) EvaluationsCSV(teamID string) ([]byte, error) {
	evaluations, err := s.teamEvaluations(teamID)
	if err != nil {
		return nil, err
	}
	rows := make([]EvaluationRow, 0, len(evaluations))
	for _, ev := range evaluations {
		name := ""
		if p, err := s.store.GetProperty(ev.PropertyID); err == nil && p != nil {
			name = p.Name
		}
		rows = append(rows, EvaluationRow{
			PropertyID:   ev.PropertyID,
			PropertyName: name,
			TotalScore:   ev.TotalScore,
			StarRating:   ev.StarRating,
			SubmittedAt:  ev.SubmittedAt.UTC().Format(time.RFC3339),
		})
	}
	return ExportEvaluationsCSV(rows)
}

// CategoriesCSV renders per-category scores in wide format.
func (s *ExportService) CategoriesCSV(teamID string) ([]byte, error) {
	evaluations, err := s.teamEvaluations(teamID)
	if err != nil {
		return nil, err
	}
	inputs := map[int64]map[string]int{}
	for _, ev := range evaluations {
		m := map[string]int{}
		for _, cs := range ev.CategoryScores {
			m[cs.Category] = cs.Score
		}
		inputs[ev.PropertyID] = m
	}
	return ExportCategoryCSV(inputs)
}

func (s *ExportService) teamEvaluations(teamID string) ([]*PropertyEvaluation, error) {
	if teamID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	return s.store.ListEvaluations(teamID)
}
