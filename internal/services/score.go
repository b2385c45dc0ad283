package services

import "math"

// ComputeBreakdown scores a set of submitted answers against the weighted
// question catalogue and returns per-category scores, the overall weighted
// score and the star rating. Inactive questions, answers referencing unknown
// questions and unresolvable choice ids contribute nothing; the function is
// total over its inputs and never mutates them.
func ComputeBreakdown(answers []PropertyEvaluationAnswer, questions []*EvaluationQuestion, choicesByQuestion map[int64][]*EvaluationAnswerChoice) QualityScoreBreakdown {
	type accum struct {
		weightedSum float64
		weightSum   int
	}
	active := make(map[int64]*EvaluationQuestion, len(questions))
	for _, q := range questions {
		if q != nil && q.IsActive {
			active[q.ID] = q
		}
	}

	// Category order is first-encountered, not sorted.
	order := []string{}
	byCategory := map[string]*accum{}
	var totalWeighted float64
	var totalWeight int

	for _, ans := range answers {
		q := active[ans.QuestionID]
		if q == nil {
			continue // stale reference; tolerated
		}
		value := resolveAnswerValue(ans, choicesByQuestion[q.ID])
		a := byCategory[q.Category]
		if a == nil {
			a = &accum{}
			byCategory[q.Category] = a
			order = append(order, q.Category)
		}
		contribution := float64(value) * float64(q.Weight) / 100
		a.weightedSum += contribution
		a.weightSum += q.Weight
		totalWeighted += contribution
		totalWeight += q.Weight
	}

	out := QualityScoreBreakdown{CategoryScores: make([]CategoryScore, 0, len(order))}
	for _, cat := range order {
		a := byCategory[cat]
		score := 0
		if a.weightSum > 0 {
			score = int(math.Round(a.weightedSum / float64(a.weightSum) * 100))
		}
		out.CategoryScores = append(out.CategoryScores, CategoryScore{
			Category: cat,
			Score:    score,
			MaxScore: 100,
			Weight:   a.weightSum,
		})
	}
	// The total is a global weighted average over every answered question,
	// not an average of the per-category scores.
	if totalWeight > 0 {
		out.TotalScore = int(math.Round(totalWeighted / float64(totalWeight) * 100))
	}
	out.StarRating = StarRating(out.TotalScore)
	return out
}

// StarRating maps a total score in [0,100] to 1..5 stars. The ceiling keeps
// exact multiples of 20 in the lower band (20 -> 1 star, 21 -> 2 stars) while
// a score of 0 still earns the 1-star floor; never 0 stars.
func StarRating(totalScore int) int {
	stars := int(math.Ceil(float64(totalScore) / 100 * 5))
	if stars < 1 {
		return 1
	}
	if stars > 5 {
		return 5
	}
	return stars
}

func resolveAnswerValue(ans PropertyEvaluationAnswer, choices []*EvaluationAnswerChoice) int {
	if ans.AnswerChoiceID == nil {
		return 0 // free-text answer
	}
	for _, c := range choices {
		if c != nil && c.ID == *ans.AnswerChoiceID {
			return c.AnswerValue
		}
	}
	return 0 // orphaned choice reference
}
