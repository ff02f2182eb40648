package target

import (
	"errors"
	"time"

	"github.com/tmusoni/gradeplan/core"
	"github.com/tmusoni/gradeplan/core/course"
)

var (
	// errors
	ErrNotFound         = errors.New("target GPA session not found")
	ErrEmptyScope       = errors.New("no courses found for the requested scope")
	ErrCareerConflict   = errors.New("a career target GPA session is already active")
	ErrScopeConflict    = errors.New("a target GPA session is already active for this scope")
	ErrYearConflict     = errors.New("an active year target GPA session covers this semester")
	ErrSemesterConflict = errors.New("an active semester target GPA session exists within this year")
	ErrOtherActive      = errors.New("another target GPA session is already active")
)

type (
	// Repository is the transactional store behind the coordinator. Atomic
	// runs fn against a store bound to a single transaction: either every
	// write inside fn commits, or none do.
	Repository interface {
		Atomic(fn func(repo Repository) error) error
		// LockOwner serializes the owner's coordinator transactions. The
		// lock is held until the enclosing transaction ends, so two
		// concurrent enables cannot both read a stale session list.
		LockOwner(ownerID string) error

		FindActiveSessions(ownerID string) ([]Session, error)
		CreateSession(sess Session) (Session, error)
		SaveSessionFeasibility(sessionID string, maxAchievableGpa, gpaShortfall *float64) error
		DisableSession(sessionID string, disabledAt time.Time) error

		CreateSnapshot(snap Snapshot) (Snapshot, error)
		FindSnapshotsBySession(sessionID string) ([]Snapshot, error)

		// FindCoursesForScope resolves the course set a session governs:
		// a semester's courses, a year's semesters' courses, or every
		// course the owner has.
		FindCoursesForScope(ownerID, scope, scopeID string) ([]course.Course, error)
		UpdateCourseDesiredGrade(courseID, letter string) error
		GetSemesterYearID(ownerID, semesterID string) (string, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Enable activates a target GPA session for the given scope: it checks the
// scope conflict rules, allocates minimal per-course grades via Allocate,
// snapshots every affected course's current goal and overwrites the goals of
// non-completed courses, all within one transaction.
func (svc *Service) Enable(ownerID string, et EnableTarget) (Session, Allocation, error) {
	var sess Session
	var alloc Allocation

	err := svc.repo.Atomic(func(repo Repository) error {
		if err := repo.LockOwner(ownerID); err != nil {
			return err
		}
		if err := checkConflicts(repo, ownerID, et.Scope, et.YearID, et.SemesterID); err != nil {
			return err
		}

		courses, err := repo.FindCoursesForScope(ownerID, et.Scope, scopeID(et.Scope, et.YearID, et.SemesterID))
		if err != nil {
			return err
		}
		if len(courses) == 0 {
			return core.NewValidationError(ErrEmptyScope)
		}

		alloc = Allocate(courses, et.TargetGpa)

		now := time.Now().UTC()
		sess = Session{
			OwnerID:          ownerID,
			Scope:            et.Scope,
			TargetGpa:        et.TargetGpa,
			MaxAchievableGpa: alloc.MaxAchievableGpa,
			GpaShortfall:     alloc.GpaShortfall,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if et.YearID != "" {
			sess.YearID = &et.YearID
		}
		if et.SemesterID != "" {
			sess.SemesterID = &et.SemesterID
		}
		sess, err = repo.CreateSession(sess)
		if err != nil {
			return err
		}

		for _, crs := range courses {
			if _, err = repo.CreateSnapshot(Snapshot{
				SessionID:                  sess.ID,
				CourseID:                   crs.ID,
				PreviousDesiredLetterGrade: crs.DesiredLetterGrade,
				CreatedAt:                  now,
			}); err != nil {
				return err
			}
			if crs.IsCompleted {
				continue
			}
			if letter, ok := alloc.Assignments[crs.ID]; ok {
				if err = repo.UpdateCourseDesiredGrade(crs.ID, letter); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return Session{}, Allocation{}, err
	}
	return sess, alloc, nil
}

// Disable soft-closes the matching active session and restores every
// snapshotted course's desired grade. A scope with no active session is a
// benign no-op.
func (svc *Service) Disable(ownerID string, dt DisableTarget) (DisableResult, error) {
	var res DisableResult

	err := svc.repo.Atomic(func(repo Repository) error {
		if err := repo.LockOwner(ownerID); err != nil {
			return err
		}
		sessions, err := repo.FindActiveSessions(ownerID)
		if err != nil {
			return err
		}

		var match *Session
		want := scopeID(dt.Scope, dt.YearID, dt.SemesterID)
		for i := range sessions {
			if sessions[i].Scope == dt.Scope && sessions[i].scopeID() == want {
				match = &sessions[i]
				break
			}
		}
		if match == nil {
			return nil // nothing to disable
		}

		snaps, err := repo.FindSnapshotsBySession(match.ID)
		if err != nil {
			return err
		}
		for _, snap := range snaps {
			if err = repo.UpdateCourseDesiredGrade(snap.CourseID, snap.PreviousDesiredLetterGrade); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		if err = repo.DisableSession(match.ID, now); err != nil {
			return err
		}
		match.DisabledAt = &now
		res = DisableResult{Disabled: true, Session: match}
		return nil
	})
	if err != nil {
		return DisableResult{}, err
	}
	return res, nil
}

// RecomputeForCourseChange re-runs the allocation of the session governing
// the affected semester, if any. An active career session wins; else a year
// session covering the semester; else the semester's own session. Desired
// grades and feasibility are overwritten in place; the original snapshots
// remain the restore point.
func (svc *Service) RecomputeForCourseChange(ownerID, semesterID string) error {
	return svc.repo.Atomic(func(repo Repository) error {
		if err := repo.LockOwner(ownerID); err != nil {
			return err
		}
		sessions, err := repo.FindActiveSessions(ownerID)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			return nil
		}

		sess, err := resolveGoverningSession(repo, ownerID, semesterID, sessions)
		if err != nil {
			return err
		}
		if sess == nil {
			return nil
		}
		return recomputeSession(repo, ownerID, sess)
	})
}

// RecomputeForStructureChange re-runs the allocation of the session governing
// a structural change: a semester or year deleted, or a semester moved to
// another year. The semester itself may already be gone, so resolution only
// considers an active career session or the year session for yearID.
func (svc *Service) RecomputeForStructureChange(ownerID, yearID string) error {
	return svc.repo.Atomic(func(repo Repository) error {
		if err := repo.LockOwner(ownerID); err != nil {
			return err
		}
		sessions, err := repo.FindActiveSessions(ownerID)
		if err != nil {
			return err
		}

		var sess *Session
		for i := range sessions {
			if sessions[i].Scope == ScopeCareer {
				sess = &sessions[i]
				break
			}
			if yearID != "" && sessions[i].Scope == ScopeYear && sessions[i].scopeID() == yearID {
				sess = &sessions[i]
			}
		}
		if sess == nil {
			return nil
		}
		return recomputeSession(repo, ownerID, sess)
	})
}

// recomputeSession overwrites the session's feasibility and the desired
// grades of its non-completed courses with a fresh allocation.
func recomputeSession(repo Repository, ownerID string, sess *Session) error {
	courses, err := repo.FindCoursesForScope(ownerID, sess.Scope, sess.scopeID())
	if err != nil {
		return err
	}

	alloc := Allocate(courses, sess.TargetGpa)
	if err = repo.SaveSessionFeasibility(sess.ID, alloc.MaxAchievableGpa, alloc.GpaShortfall); err != nil {
		return err
	}
	for _, crs := range courses {
		if crs.IsCompleted {
			continue
		}
		if letter, ok := alloc.Assignments[crs.ID]; ok {
			if err = repo.UpdateCourseDesiredGrade(crs.ID, letter); err != nil {
				return err
			}
		}
	}
	return nil
}

// ActiveSessions lists the owner's currently active sessions.
func (svc *Service) ActiveSessions(ownerID string) ([]Session, error) {
	return svc.repo.FindActiveSessions(ownerID)
}

// checkConflicts enforces the scope mutual-exclusion rules before any
// mutation happens.
func checkConflicts(repo Repository, ownerID, scope, yearID, semesterID string) error {
	sessions, err := repo.FindActiveSessions(ownerID)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return nil
	}

	switch scope {
	case ScopeCareer:
		// career tolerates no other active session at all
		return core.NewConflictError(ErrOtherActive)

	case ScopeYear:
		for _, sess := range sessions {
			switch sess.Scope {
			case ScopeCareer:
				return core.NewConflictError(ErrCareerConflict)
			case ScopeYear:
				if sess.scopeID() == yearID {
					return core.NewConflictError(ErrScopeConflict)
				}
			case ScopeSemester:
				sessYearID, err := repo.GetSemesterYearID(ownerID, sess.scopeID())
				if err != nil {
					return err
				}
				if sessYearID == yearID {
					return core.NewConflictError(ErrSemesterConflict)
				}
			}
		}

	case ScopeSemester:
		coveringYearID, err := repo.GetSemesterYearID(ownerID, semesterID)
		if err != nil {
			return err
		}
		for _, sess := range sessions {
			switch sess.Scope {
			case ScopeCareer:
				return core.NewConflictError(ErrCareerConflict)
			case ScopeYear:
				if sess.scopeID() == coveringYearID {
					return core.NewConflictError(ErrYearConflict)
				}
			case ScopeSemester:
				if sess.scopeID() == semesterID {
					return core.NewConflictError(ErrScopeConflict)
				}
			}
		}
	}
	return nil
}

// resolveGoverningSession picks the session a course change at semesterID
// must recompute: career > covering year > semester.
func resolveGoverningSession(repo Repository, ownerID, semesterID string, sessions []Session) (*Session, error) {
	for i := range sessions {
		if sessions[i].Scope == ScopeCareer {
			return &sessions[i], nil
		}
	}
	if semesterID == "" {
		return nil, nil
	}

	yearID, err := repo.GetSemesterYearID(ownerID, semesterID)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].Scope == ScopeYear && sessions[i].scopeID() == yearID {
			return &sessions[i], nil
		}
	}
	for i := range sessions {
		if sessions[i].Scope == ScopeSemester && sessions[i].scopeID() == semesterID {
			return &sessions[i], nil
		}
	}
	return nil, nil
}

func scopeID(scope, yearID, semesterID string) string {
	switch scope {
	case ScopeYear:
		return yearID
	case ScopeSemester:
		return semesterID
	}
	return ""
}
