package course

import (
	"reflect"
	"testing"
)

func fPtr(f float64) *float64 { return &f }

func graded(id string, max, earned float64) Assignment {
	return Assignment{ID: id, Name: id, MaxPoints: max, IsGraded: true, EarnedPoints: &earned}
}

func ungraded(id string, max float64) Assignment {
	return Assignment{ID: id, Name: id, MaxPoints: max}
}

func forecast(id string, max, expected float64) Assignment {
	return Assignment{ID: id, Name: id, MaxPoints: max, ExpectedPoints: &expected}
}

func oneCategoryCourse(desired string, weight float64, dropLowest int, assignments ...Assignment) Course {
	return Course{
		ID:                 "crs",
		DesiredLetterGrade: desired,
		GradingMethod:      MethodWeighted,
		Categories: []Category{
			{ID: "cat", Name: "Homework", WeightPercent: weight, DropLowest: dropLowest, Assignments: assignments},
		},
	}
}

func TestProject_isPure(t *testing.T) {
	crs := oneCategoryCourse(GradeA, 100, 1,
		graded("a1", 100, 80),
		forecast("a2", 100, 70),
		ungraded("a3", 50),
	)

	p1 := Project(crs)
	p2 := Project(crs)
	if !reflect.DeepEqual(p1, p2) {
		t.Errorf("Project() is not deterministic:\n%+v\n%+v", p1, p2)
	}
}

func TestProject_requirementsSplitEvenly(t *testing.T) {
	// two ungraded 100-point assignments, target A -> 90 needed on each
	crs := oneCategoryCourse(GradeA, 100, 0, ungraded("a1", 100), ungraded("a2", 100))

	proj := Project(crs)

	if !proj.Achievable {
		t.Fatalf("Project() achievable = false; want true (reason %q)", proj.Reason)
	}
	if len(proj.Requirements) != 2 {
		t.Fatalf("Project() requirements = %d; want 2", len(proj.Requirements))
	}
	for _, req := range proj.Requirements {
		if req.RequiredPoints != 90 {
			t.Errorf("Project() required points for %s = %v; want 90", req.AssignmentID, req.RequiredPoints)
		}
	}
	if proj.ActualPercent != nil {
		t.Errorf("Project() actual = %v; want nil (nothing graded)", *proj.ActualPercent)
	}
	if proj.ProjectedPercent == nil || *proj.ProjectedPercent != 1 {
		t.Errorf("Project() projected = %v; want 1 (optimistic full credit)", proj.ProjectedPercent)
	}
}

func TestProject_unattainableTarget(t *testing.T) {
	// 50/100 graded + 100 ungraded, target A: needed 130 > remaining 100
	crs := oneCategoryCourse(GradeA, 100, 0, graded("a1", 100, 50), ungraded("a2", 100))

	proj := Project(crs)

	if proj.Achievable {
		t.Error("Project() achievable = true; want false")
	}
	if proj.Reason != ReasonNotEnoughPoints {
		t.Errorf("Project() reason = %q; want %q", proj.Reason, ReasonNotEnoughPoints)
	}
	// the remaining assignment is still asked for its capped best
	if len(proj.Requirements) != 1 || proj.Requirements[0].RequiredPoints != 100 {
		t.Errorf("Project() requirements = %+v; want a2 capped at 100", proj.Requirements)
	}
}

func TestProject_extraCreditKeepsTargetAlive(t *testing.T) {
	crs := oneCategoryCourse(GradeA, 100, 0,
		graded("a1", 100, 50),
		Assignment{ID: "ec", Name: "ec", MaxPoints: 100, IsExtraCredit: true},
	)

	proj := Project(crs)

	if !proj.Achievable {
		t.Errorf("Project() achievable = false; want true when remaining work is extra credit")
	}
}

func TestProject_noRemainingAssignments(t *testing.T) {
	crs := oneCategoryCourse(GradeA, 100, 0, graded("a1", 100, 50))

	proj := Project(crs)

	if proj.Achievable {
		t.Error("Project() achievable = true; want false")
	}
	if proj.Reason != ReasonNothingLeft {
		t.Errorf("Project() reason = %q; want %q", proj.Reason, ReasonNothingLeft)
	}
}

func TestProject_dropLowestTieBreak(t *testing.T) {
	// both 100%: the earlier-listed assignment is the one dropped
	crs := oneCategoryCourse(GradeA, 100, 1, graded("first", 45, 45), graded("second", 50, 50))

	proj := Project(crs)

	cat := proj.Categories[0]
	if len(cat.ActualDropped) != 1 || cat.ActualDropped[0] != "first" {
		t.Errorf("Project() actual dropped = %v; want [first]", cat.ActualDropped)
	}
	if len(cat.ProjectedDropped) != 1 || cat.ProjectedDropped[0] != "first" {
		t.Errorf("Project() projected dropped = %v; want [first]", cat.ProjectedDropped)
	}
}

func TestProject_dropLowestDiffersPerSet(t *testing.T) {
	// actual set only sees the graded pair and drops the 60%;
	// projected set assumes full credit on the ungraded one, so the
	// graded 60% is still the lowest there too -- until a low forecast
	// arrives on the ungraded assignment.
	crs := oneCategoryCourse(GradeA, 100, 1,
		graded("a1", 100, 60),
		graded("a2", 100, 90),
		forecast("a3", 100, 40),
	)

	proj := Project(crs)

	cat := proj.Categories[0]
	if len(cat.ActualDropped) != 1 || cat.ActualDropped[0] != "a1" {
		t.Errorf("Project() actual dropped = %v; want [a1]", cat.ActualDropped)
	}
	if len(cat.ProjectedDropped) != 1 || cat.ProjectedDropped[0] != "a3" {
		t.Errorf("Project() projected dropped = %v; want [a3]", cat.ProjectedDropped)
	}
	// actual keeps a2 only: 90/100
	if cat.ActualPercent == nil || *cat.ActualPercent != 0.9 {
		t.Errorf("Project() category actual = %v; want 0.9", cat.ActualPercent)
	}
	// projected keeps a1 + a2: 150/200
	if cat.ProjectedPercent == nil || *cat.ProjectedPercent != 0.75 {
		t.Errorf("Project() category projected = %v; want 0.75", cat.ProjectedPercent)
	}
}

func TestProject_weightNormalization(t *testing.T) {
	// weights 30 + 30 normalize to 0.5 each regardless of the 100 total
	crs := Course{
		ID:                 "crs",
		DesiredLetterGrade: GradeB,
		GradingMethod:      MethodWeighted,
		Categories: []Category{
			{ID: "hw", Name: "Homework", WeightPercent: 30, Assignments: []Assignment{graded("a1", 100, 80)}},
			{ID: "ex", Name: "Exams", WeightPercent: 30, Assignments: []Assignment{graded("a2", 100, 60)}},
		},
	}

	proj := Project(crs)

	var total float64
	for _, cat := range proj.Categories {
		if cat.Weight != 0.5 {
			t.Errorf("Project() category %s weight = %v; want 0.5", cat.CategoryID, cat.Weight)
		}
		total += cat.Weight
	}
	if total != 1 {
		t.Errorf("Project() weights sum = %v; want 1", total)
	}
	if proj.ActualPercent == nil || *proj.ActualPercent != 0.7 {
		t.Errorf("Project() actual = %v; want 0.7", proj.ActualPercent)
	}
	if proj.CoveredWeight != 1 || proj.RemainingWeight != 0 {
		t.Errorf("Project() covered/remaining = %v/%v; want 1/0", proj.CoveredWeight, proj.RemainingWeight)
	}
}

func TestProject_negativeWeightClampsToZero(t *testing.T) {
	crs := Course{
		ID:                 "crs",
		DesiredLetterGrade: GradeA,
		GradingMethod:      MethodWeighted,
		Categories: []Category{
			{ID: "hw", Name: "Homework", WeightPercent: -20, Assignments: []Assignment{graded("a1", 100, 40)}},
			{ID: "ex", Name: "Exams", WeightPercent: 50, Assignments: []Assignment{graded("a2", 100, 80)}},
		},
	}

	proj := Project(crs)

	if proj.Categories[0].Weight != 0 {
		t.Errorf("Project() negative weight = %v; want 0", proj.Categories[0].Weight)
	}
	// only the exams category carries weight
	if proj.ActualPercent == nil || *proj.ActualPercent != 0.8 {
		t.Errorf("Project() actual = %v; want 0.8", proj.ActualPercent)
	}
}

func TestProject_partialCoverage(t *testing.T) {
	// one graded category out of two equal-weight ones
	crs := Course{
		ID:                 "crs",
		DesiredLetterGrade: GradeA,
		GradingMethod:      MethodWeighted,
		Categories: []Category{
			{ID: "hw", Name: "Homework", WeightPercent: 50, Assignments: []Assignment{graded("a1", 100, 90)}},
			{ID: "ex", Name: "Exams", WeightPercent: 50, Assignments: []Assignment{ungraded("a2", 100)}},
		},
	}

	proj := Project(crs)

	if proj.ActualPercent == nil || *proj.ActualPercent != 0.9 {
		t.Errorf("Project() actual = %v; want 0.9 (renormalized over graded weight)", proj.ActualPercent)
	}
	if proj.CoveredWeight != 0.5 {
		t.Errorf("Project() covered = %v; want 0.5", proj.CoveredWeight)
	}
	if proj.RemainingWeight != 0.5 {
		t.Errorf("Project() remaining = %v; want 0.5", proj.RemainingWeight)
	}
}

func TestProject_pointsMode(t *testing.T) {
	// raw point totals across categories; weights are ignored
	crs := Course{
		ID:                 "crs",
		DesiredLetterGrade: GradeA,
		GradingMethod:      MethodPoints,
		Categories: []Category{
			{ID: "hw", Name: "Homework", WeightPercent: 90, Assignments: []Assignment{graded("a1", 50, 40)}},
			{ID: "ex", Name: "Exams", WeightPercent: 10, Assignments: []Assignment{graded("a2", 150, 120), ungraded("a3", 100)}},
		},
	}

	proj := Project(crs)

	// actual: (40+120)/(50+150) = 0.8
	if proj.ActualPercent == nil || *proj.ActualPercent != 0.8 {
		t.Errorf("Project() actual = %v; want 0.8", proj.ActualPercent)
	}
	// projected: (40+120+100)/(50+150+100)
	want := 260.0 / 300.0
	if proj.ProjectedPercent == nil || *proj.ProjectedPercent != want {
		t.Errorf("Project() projected = %v; want %v", proj.ProjectedPercent, want)
	}
}

func TestProject_extraCreditNotClamped(t *testing.T) {
	crs := oneCategoryCourse(GradeA, 100, 0,
		graded("a1", 100, 80),
		Assignment{ID: "ec", Name: "ec", MaxPoints: 10, IsExtraCredit: true, IsGraded: true, EarnedPoints: fPtr(25)},
	)

	proj := Project(crs)

	// (80+25)/(100+10)
	want := 105.0 / 110.0
	if proj.ActualPercent == nil || *proj.ActualPercent != want {
		t.Errorf("Project() actual = %v; want %v", proj.ActualPercent, want)
	}
}

func TestProject_regularScoreClamped(t *testing.T) {
	crs := oneCategoryCourse(GradeA, 100, 0, graded("a1", 100, 120))

	proj := Project(crs)

	if proj.ActualPercent == nil || *proj.ActualPercent != 1 {
		t.Errorf("Project() actual = %v; want 1 (clamped to max)", proj.ActualPercent)
	}
}

func TestProject_unknownDesiredLetterDefaultsToA(t *testing.T) {
	crs := oneCategoryCourse("", 100, 0, ungraded("a1", 100))

	proj := Project(crs)

	if proj.TargetPercent != 0.9 {
		t.Errorf("Project() target = %v; want 0.9", proj.TargetPercent)
	}
}

func TestProject_emptyCategory(t *testing.T) {
	crs := Course{
		ID:                 "crs",
		DesiredLetterGrade: GradeB,
		GradingMethod:      MethodWeighted,
		Categories: []Category{
			{ID: "hw", Name: "Homework", WeightPercent: 50, Assignments: []Assignment{graded("a1", 100, 95)}},
			{ID: "ex", Name: "Exams", WeightPercent: 50},
		},
	}

	proj := Project(crs)

	if !proj.Achievable {
		t.Errorf("Project() achievable = false; want true (empty category asks for nothing)")
	}
	// empty category contributes 0 to projected
	if proj.ProjectedPercent == nil || *proj.ProjectedPercent != 0.475 {
		t.Errorf("Project() projected = %v; want 0.475", proj.ProjectedPercent)
	}
}

func TestProject_firstFailureReasonWins(t *testing.T) {
	crs := Course{
		ID:                 "crs",
		DesiredLetterGrade: GradeA,
		GradingMethod:      MethodWeighted,
		Categories: []Category{
			// fails with "nothing left"
			{ID: "hw", Name: "Homework", WeightPercent: 50, Assignments: []Assignment{graded("a1", 100, 50)}},
			// fails with "not enough points"
			{ID: "ex", Name: "Exams", WeightPercent: 50, Assignments: []Assignment{graded("a2", 100, 10), ungraded("a3", 50)}},
		},
	}

	proj := Project(crs)

	if proj.Achievable {
		t.Fatal("Project() achievable = true; want false")
	}
	if proj.Reason != ReasonNothingLeft {
		t.Errorf("Project() reason = %q; want the first category's %q", proj.Reason, ReasonNothingLeft)
	}
}

func TestLetterFromPercent(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{1.2, GradeA},
		{0.9, GradeA},
		{0.85, GradeB},
		{0.7, GradeC},
		{0.65, GradeD},
		{0.1, GradeF},
	}
	for _, tt := range tests {
		if got := LetterFromPercent(tt.pct); got != tt.want {
			t.Errorf("LetterFromPercent(%v) = %q; want %q", tt.pct, got, tt.want)
		}
	}
}
