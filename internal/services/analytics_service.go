package services

import (
	"math"
	"sort"
)

type AnalyticsStore interface {
	ListEvaluations(teamID string) ([]*PropertyEvaluation, error)
}

type AnalyticsService struct {
	store AnalyticsStore
}

type CategoryAverage struct {
	Category string  `json:"category"`
	Average  float64 `json:"average"`
	Count    int     `json:"count"`
}

type AnalyticsTimeseries struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type AnalyticsSummary struct {
	TeamID           string                `json:"team_id"`
	TotalEvaluations int                   `json:"total_evaluations"`
	AverageScore     float64               `json:"average_score"`
	StarHistogram    []int                 `json:"star_histogram"`
	CategoryAverages []CategoryAverage     `json:"category_averages"`
	Timeseries       []AnalyticsTimeseries `json:"timeseries"`
}

func NewAnalyticsService(store AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// Summary aggregates the team's stored evaluations into dashboard figures:
// mean total score, star distribution, per-category averages and a
// submissions-per-day timeseries.
func (s *AnalyticsService) Summary(teamID string) (*AnalyticsSummary, error) {
	if teamID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	evaluations, err := s.store.ListEvaluations(teamID)
	if err != nil {
		return nil, err
	}

	histogram := make([]int, 5)
	scoreSum := 0
	countsByDay := map[string]int{}
	catSums := map[string]int{}
	catCounts := map[string]int{}
	for _, ev := range evaluations {
		if ev == nil {
			continue
		}
		scoreSum += ev.TotalScore
		if ev.StarRating >= 1 && ev.StarRating <= 5 {
			histogram[ev.StarRating-1]++
		}
		countsByDay[ev.SubmittedAt.UTC().Format("2006-01-02")]++
		for _, cs := range ev.CategoryScores {
			catSums[cs.Category] += cs.Score
			catCounts[cs.Category]++
		}
	}

	avg := 0.0
	if len(evaluations) > 0 {
		avg = math.Round(float64(scoreSum)/float64(len(evaluations))*10) / 10
	}
	return &AnalyticsSummary{
		TeamID:           teamID,
		TotalEvaluations: len(evaluations),
		AverageScore:     avg,
		StarHistogram:    histogram,
		CategoryAverages: buildCategoryAverages(catSums, catCounts),
		Timeseries:       buildTimeseries(countsByDay),
	}, nil
}

func buildCategoryAverages(sums, counts map[string]int) []CategoryAverage {
	categories := make([]string, 0, len(sums))
	for c := range sums {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	out := make([]CategoryAverage, 0, len(categories))
	for _, c := range categories {
		n := counts[c]
		if n == 0 {
			continue
		}
		out = append(out, CategoryAverage{
			Category: c,
			Average:  math.Round(float64(sums[c])/float64(n)*10) / 10,
			Count:    n,
		})
	}
	return out
}

func buildTimeseries(counts map[string]int) []AnalyticsTimeseries {
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)
	out := make([]AnalyticsTimeseries, 0, len(days))
	for _, d := range days {
		out = append(out, AnalyticsTimeseries{Date: d, Count: counts[d]})
	}
	return out
}
