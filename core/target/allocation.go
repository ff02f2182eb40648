package target

import (
	"sort"

	"github.com/tmusoni/gradeplan/core"
	"github.com/tmusoni/gradeplan/core/course"
)

var (
	gradePoints = map[string]float64{
		course.GradeA: 4,
		course.GradeB: 3,
		course.GradeC: 2,
		course.GradeD: 1,
		course.GradeF: 0,
	}

	// gradeLadder is walked upward when spending deficit on a course.
	// It starts at D: the engine never proposes F as a goal.
	gradeLadder = []string{course.GradeD, course.GradeC, course.GradeB, course.GradeA}
)

// GradePoints returns the point value of a letter grade; unknown letters count as F.
func GradePoints(letter string) float64 {
	return gradePoints[letter]
}

// Allocation is the result of allocating a target GPA across courses:
// a minimal letter-grade assignment per eligible course, plus feasibility
// figures that are only set when the target cannot be reached.
type Allocation struct {
	Assignments      map[string]string `json:"assignments"`
	MaxAchievableGpa *float64          `json:"max_achievable_gpa"`
	GpaShortfall     *float64          `json:"gpa_shortfall"`
}

// Feasible reports whether the target GPA can be reached.
func (a Allocation) Feasible() bool { return a.GpaShortfall == nil }

// Allocate distributes a target GPA over a set of courses, assigning each
// non-completed course the minimal letter grade such that the weighted grade
// points reach targetGpa × total credits. Completed courses are locked to
// their actual grade (F when unset). The greedy walk spends upgrades on the
// highest-credit courses first, exhausting one course's ladder before moving
// to the next. It is a pure function of its input.
func Allocate(courses []course.Course, targetGpa float64) Allocation {
	alloc := Allocation{Assignments: make(map[string]string)}

	var totalCredits int
	for _, crs := range courses {
		totalCredits += crs.Credits
	}
	if totalCredits == 0 {
		return alloc
	}

	var lockedPoints float64
	eligible := make([]course.Course, 0, len(courses))
	for _, crs := range courses {
		if crs.IsCompleted {
			letter := course.GradeF
			if crs.ActualLetterGrade != nil {
				letter = *crs.ActualLetterGrade
			}
			lockedPoints += GradePoints(letter) * float64(crs.Credits)
			continue
		}
		eligible = append(eligible, crs)
	}

	// baseline: everyone gets a D
	currentPoints := lockedPoints
	var eligibleCredits int
	for _, crs := range eligible {
		alloc.Assignments[crs.ID] = gradeLadder[0]
		currentPoints += GradePoints(gradeLadder[0]) * float64(crs.Credits)
		eligibleCredits += crs.Credits
	}

	deficit := targetGpa*float64(totalCredits) - currentPoints

	// spend upgrades on the highest-leverage courses first
	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].Credits > eligible[j].Credits })
	for _, crs := range eligible {
		if deficit <= 0 {
			break
		}
		grade, delta := allocateCourse(crs, deficit)
		alloc.Assignments[crs.ID] = grade
		deficit -= delta
	}

	if deficit > 0 {
		// not even straight As get there
		maxPoints := lockedPoints + GradePoints(course.GradeA)*float64(eligibleCredits)
		maxGpa := maxPoints / float64(totalCredits)
		shortfall := targetGpa - maxGpa
		if shortfall < 0 {
			shortfall = 0
		}
		for _, crs := range eligible {
			alloc.Assignments[crs.ID] = course.GradeA
		}
		alloc.MaxAchievableGpa = core.Float64Ptr(maxGpa)
		alloc.GpaShortfall = core.Float64Ptr(shortfall)
	}

	return alloc
}

// allocateCourse steps one course's grade up the ladder until the course
// reaches an A or the remaining deficit is spent. It returns the final grade
// and the grade points gained.
func allocateCourse(crs course.Course, remainingDeficit float64) (string, float64) {
	grade := gradeLadder[0]
	var gained float64
	for _, next := range gradeLadder[1:] {
		if remainingDeficit <= 0 {
			break
		}
		delta := (GradePoints(next) - GradePoints(grade)) * float64(crs.Credits)
		grade = next
		gained += delta
		remainingDeficit -= delta
	}
	return grade, gained
}
