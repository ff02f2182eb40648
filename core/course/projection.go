package course

import (
	"sort"

	"github.com/tmusoni/gradeplan/core"
)

// Display-ready reasons for an unattainable target grade.
const (
	ReasonNotEnoughPoints = "Target grade unattainable with remaining max points."
	ReasonNothingLeft     = "No remaining assignments to cover the target."
)

type (
	// AssignmentRequirement is the score an ungraded assignment must earn
	// for the course to land on its target grade.
	AssignmentRequirement struct {
		AssignmentID   string  `json:"assignment_id"`
		CategoryID     string  `json:"category_id"`
		Name           string  `json:"name"`
		MaxPoints      float64 `json:"max_points"`
		RequiredPoints float64 `json:"required_points"`
	}

	CategoryProjection struct {
		CategoryID       string   `json:"category_id"`
		Name             string   `json:"name"`
		Weight           float64  `json:"weight"`
		ActualPercent    *float64 `json:"actual_percent"`
		ProjectedPercent *float64 `json:"projected_percent"`
		ActualDropped    []string `json:"actual_dropped,omitempty"`
		ProjectedDropped []string `json:"projected_dropped,omitempty"`
	}

	Projection struct {
		CourseID         string                  `json:"course_id"`
		TargetPercent    float64                 `json:"target_percent"`
		ActualPercent    *float64                `json:"actual_percent"`
		ProjectedPercent *float64                `json:"projected_percent"`
		Achievable       bool                    `json:"achievable"`
		Reason           string                  `json:"reason,omitempty"`
		CoveredWeight    float64                 `json:"covered_weight"`
		RemainingWeight  float64                 `json:"remaining_weight"`
		Categories       []CategoryProjection    `json:"categories"`
		Requirements     []AssignmentRequirement `json:"requirements"`
	}
)

// scoredEntry is one assignment within a score set. The score is already
// clamped to MaxPoints unless the assignment is extra credit.
type scoredEntry struct {
	idx   int // original position, breaks equal-ratio ties
	score float64
	a     *Assignment
}

func (e scoredEntry) ratio() float64 {
	if e.a.MaxPoints <= 0 {
		return 0
	}
	return e.score / e.a.MaxPoints
}

// categoryScores holds a category's two score sets after drop-lowest selection.
type categoryScores struct {
	cat              *Category
	actual           []scoredEntry
	projected        []scoredEntry
	actualDropped    []string
	projectedDropped []string
}

// Project computes the current and projected grade of a course along with what
// each remaining assignment must score for the course to reach its desired
// letter grade. It is a pure function of its input.
func Project(crs Course) Projection {
	target := TargetPercent(crs.DesiredLetterGrade)

	proj := Projection{
		CourseID:      crs.ID,
		TargetPercent: target,
		Achievable:    true,
		Categories:    make([]CategoryProjection, 0, len(crs.Categories)),
		Requirements:  []AssignmentRequirement{},
	}

	scores := make([]categoryScores, 0, len(crs.Categories))
	for i := range crs.Categories {
		scores = append(scores, buildCategoryScores(&crs.Categories[i]))
	}

	weights := normalizedWeights(crs.Categories)

	for i := range scores {
		cs := &scores[i]
		cp := CategoryProjection{
			CategoryID:       cs.cat.ID,
			Name:             cs.cat.Name,
			Weight:           weights[i],
			ActualPercent:    setPercent(cs.actual),
			ProjectedPercent: setPercent(cs.projected),
			ActualDropped:    cs.actualDropped,
			ProjectedDropped: cs.projectedDropped,
		}
		proj.Categories = append(proj.Categories, cp)

		reqs, reason := categoryRequirements(cs, target)
		proj.Requirements = append(proj.Requirements, reqs...)
		if reason != "" && proj.Achievable {
			// only the first failure is reported
			proj.Achievable = false
			proj.Reason = reason
		}
	}

	var agg aggregation
	if crs.GradingMethod == MethodPoints {
		agg = pointsAggregation{}
	} else {
		agg = weightedAggregation{weights: weights}
	}
	proj.ActualPercent, proj.ProjectedPercent, proj.CoveredWeight = agg.aggregate(scores, proj.Categories)
	proj.RemainingWeight = 1 - proj.CoveredWeight

	return proj
}

// buildCategoryScores assembles the actual and projected score sets of a
// category and applies drop-lowest selection to each independently.
func buildCategoryScores(cat *Category) categoryScores {
	cs := categoryScores{cat: cat}
	for i := range cat.Assignments {
		a := &cat.Assignments[i]
		if a.IsGraded && a.EarnedPoints != nil {
			score := clampScore(*a.EarnedPoints, a)
			cs.actual = append(cs.actual, scoredEntry{idx: i, score: score, a: a})
			cs.projected = append(cs.projected, scoredEntry{idx: i, score: score, a: a})
			continue
		}
		// ungraded: use the forecast if one exists, otherwise assume full credit
		score := a.MaxPoints
		if a.ExpectedPoints != nil {
			score = clampScore(*a.ExpectedPoints, a)
		}
		cs.projected = append(cs.projected, scoredEntry{idx: i, score: score, a: a})
	}
	cs.actual, cs.actualDropped = dropLowest(cs.actual, cat.DropLowest)
	cs.projected, cs.projectedDropped = dropLowest(cs.projected, cat.DropLowest)
	return cs
}

// dropLowest removes the n lowest-scoring entries by earned/max ratio.
// Equal ratios are broken by original input order: the earlier entry drops first.
func dropLowest(entries []scoredEntry, n int) (kept []scoredEntry, dropped []string) {
	if n <= 0 || len(entries) == 0 {
		return entries, nil
	}
	sorted := make([]scoredEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := sorted[i].ratio(), sorted[j].ratio()
		if ri != rj {
			return ri < rj
		}
		return sorted[i].idx < sorted[j].idx
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	for _, e := range sorted[:n] {
		dropped = append(dropped, e.a.ID)
	}
	kept = sorted[n:]
	// restore input order for the survivors
	sort.Slice(kept, func(i, j int) bool { return kept[i].idx < kept[j].idx })
	return kept, dropped
}

func clampScore(score float64, a *Assignment) float64 {
	if !a.IsExtraCredit && score > a.MaxPoints {
		return a.MaxPoints
	}
	return score
}

// setPercent computes earned/max over the kept entries; nil when max is 0.
func setPercent(entries []scoredEntry) *float64 {
	var earned, max float64
	for _, e := range entries {
		earned += e.score
		max += e.a.MaxPoints
	}
	if max <= 0 {
		return nil
	}
	return core.Float64Ptr(earned / max)
}

// categoryRequirements distributes the points still needed for the target
// percent across the category's ungraded survivors, proportionally to their
// max points. A non-empty reason means the target cannot be met here.
func categoryRequirements(cs *categoryScores, target float64) ([]AssignmentRequirement, string) {
	var earnedSoFar, keptMax, remainingMax float64
	var remaining []scoredEntry
	var remainingHasExtraCredit bool

	for _, e := range cs.projected {
		keptMax += e.a.MaxPoints
		if e.a.IsGraded && e.a.EarnedPoints != nil {
			earnedSoFar += e.score
			continue
		}
		remaining = append(remaining, e)
		remainingMax += e.a.MaxPoints
		if e.a.IsExtraCredit {
			remainingHasExtraCredit = true
		}
	}

	needed := target*keptMax - earnedSoFar
	if needed < 0 {
		needed = 0
	}

	if len(remaining) == 0 {
		if needed > 0 {
			return nil, ReasonNothingLeft
		}
		return nil, ""
	}

	var reqs []AssignmentRequirement
	if remainingMax > 0 {
		scale := needed / remainingMax
		for _, e := range remaining {
			required := e.a.MaxPoints * scale
			if required > e.a.MaxPoints {
				required = e.a.MaxPoints
			}
			reqs = append(reqs, AssignmentRequirement{
				AssignmentID:   e.a.ID,
				CategoryID:     cs.cat.ID,
				Name:           e.a.Name,
				MaxPoints:      e.a.MaxPoints,
				RequiredPoints: core.Round2(required),
			})
		}
	}
	if needed > remainingMax && !remainingHasExtraCredit {
		return reqs, ReasonNotEnoughPoints
	}
	return reqs, ""
}

// normalizedWeights maps each category's weight onto [0..1] shares of the
// observed total. Negative weights count as 0; a zero total divides by 1.
func normalizedWeights(cats []Category) []float64 {
	weights := make([]float64, len(cats))
	var total float64
	for i, cat := range cats {
		w := cat.WeightPercent
		if w < 0 {
			w = 0
		}
		weights[i] = w
		total += w
	}
	if total == 0 {
		total = 1
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights
}

// aggregation folds category percents into course-level figures. The strategy
// is picked once per course off its grading method.
type aggregation interface {
	aggregate(scores []categoryScores, cats []CategoryProjection) (actual, projected *float64, covered float64)
}

// weightedAggregation averages category percents by their normalized weights.
type weightedAggregation struct {
	weights []float64
}

func (agg weightedAggregation) aggregate(_ []categoryScores, cats []CategoryProjection) (*float64, *float64, float64) {
	var actualSum, coveredWeight, projectedSum float64
	var hasActual bool
	for i, cp := range cats {
		w := agg.weights[i]
		if cp.ActualPercent != nil {
			actualSum += w * *cp.ActualPercent
			coveredWeight += w
			hasActual = true
		}
		if cp.ProjectedPercent != nil {
			projectedSum += w * *cp.ProjectedPercent
		}
	}

	var actual *float64
	if hasActual && coveredWeight > 0 {
		actual = core.Float64Ptr(actualSum / coveredWeight)
	}
	return actual, core.Float64Ptr(projectedSum), coveredWeight
}

// pointsAggregation sums raw earned and max points across every category,
// ignoring weights entirely.
type pointsAggregation struct{}

func (pointsAggregation) aggregate(scores []categoryScores, _ []CategoryProjection) (*float64, *float64, float64) {
	var actualEarned, actualMax, projectedEarned, projectedMax float64
	for _, cs := range scores {
		for _, e := range cs.actual {
			actualEarned += e.score
			actualMax += e.a.MaxPoints
		}
		for _, e := range cs.projected {
			projectedEarned += e.score
			projectedMax += e.a.MaxPoints
		}
	}

	var actual, projected *float64
	if actualMax > 0 {
		actual = core.Float64Ptr(actualEarned / actualMax)
	}
	if projectedMax > 0 {
		projected = core.Float64Ptr(projectedEarned / projectedMax)
	}

	// share of gradable points already graded stands in for covered weight
	var covered float64
	if projectedMax > 0 {
		covered = actualMax / projectedMax
	}
	return actual, projected, covered
}
