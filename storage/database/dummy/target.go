package dummydb

import (
	"time"

	"github.com/google/uuid"

	"github.com/tmusoni/gradeplan/core/academic"
	"github.com/tmusoni/gradeplan/core/course"
	"github.com/tmusoni/gradeplan/core/target"
)

type targetRepository struct {
	db *DB
}

var _ target.Repository = (*targetRepository)(nil) // interface compliance check

func NewTargetRepository(db *DB) target.Repository {
	return &targetRepository{db: db}
}

// Atomic runs fn against the store itself. The dummy store has no
// transactions; partial writes from a failed fn are visible. Blocks are
// serialized so concurrent coordinator calls see each other's sessions,
// like the SQL store's advisory lock.
func (repo *targetRepository) Atomic(fn func(repo target.Repository) error) error {
	repo.db.coordMu.Lock()
	defer repo.db.coordMu.Unlock()
	return fn(repo)
}

// LockOwner is a no-op; Atomic already serializes.
func (repo *targetRepository) LockOwner(ownerID string) error {
	return nil
}

// deleteSession removes a session with its snapshots. Caller holds the lock.
func (db *DB) deleteSession(id string) {
	for _, snapID := range append([]string(nil), db.snapshot.ids...) {
		if db.snapshot.rows[snapID].SessionID == id {
			delete(db.snapshot.rows, snapID)
			db.snapshot.ids = dropID(db.snapshot.ids, snapID)
		}
	}
	delete(db.session.rows, id)
	db.session.ids = dropID(db.session.ids, id)
}

func (repo *targetRepository) FindActiveSessions(ownerID string) ([]target.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sessions := make([]target.Session, 0)
	for _, id := range repo.db.session.ids {
		sess := repo.db.session.rows[id]
		if sess.OwnerID == ownerID && sess.IsActive() {
			sessions = append(sessions, *sess)
		}
	}
	return sessions, nil
}

func (repo *targetRepository) CreateSession(sess target.Session) (target.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sess.ID = uuid.New().String()
	repo.db.session.rows[sess.ID] = &sess
	repo.db.session.ids = append(repo.db.session.ids, sess.ID)
	return sess, nil
}

func (repo *targetRepository) SaveSessionFeasibility(sessionID string, maxAchievableGpa, gpaShortfall *float64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	sess, ok := repo.db.session.rows[sessionID]
	if !ok {
		return target.ErrNotFound
	}
	sess.MaxAchievableGpa = maxAchievableGpa
	sess.GpaShortfall = gpaShortfall
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *targetRepository) DisableSession(sessionID string, disabledAt time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	sess, ok := repo.db.session.rows[sessionID]
	if !ok {
		return target.ErrNotFound
	}
	sess.DisabledAt = &disabledAt
	sess.UpdatedAt = disabledAt
	return nil
}

func (repo *targetRepository) CreateSnapshot(snap target.Snapshot) (target.Snapshot, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	snap.ID = uuid.New().String()
	repo.db.snapshot.rows[snap.ID] = &snap
	repo.db.snapshot.ids = append(repo.db.snapshot.ids, snap.ID)
	return snap, nil
}

func (repo *targetRepository) FindSnapshotsBySession(sessionID string) ([]target.Snapshot, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	snaps := make([]target.Snapshot, 0)
	for _, id := range repo.db.snapshot.ids {
		if snap := repo.db.snapshot.rows[id]; snap.SessionID == sessionID {
			snaps = append(snaps, *snap)
		}
	}
	return snaps, nil
}

func (repo *targetRepository) FindCoursesForScope(ownerID, scope, scopeID string) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	inScope := func(crs *course.Course) bool {
		switch scope {
		case target.ScopeSemester:
			return crs.SemesterID == scopeID
		case target.ScopeYear:
			sem, ok := repo.db.semester.rows[crs.SemesterID]
			return ok && sem.YearID == scopeID
		default: // career
			return true
		}
	}

	courses := make([]course.Course, 0)
	for _, id := range repo.db.course.ids {
		crs := repo.db.course.rows[id]
		if crs.OwnerID == ownerID && inScope(crs) {
			courses = append(courses, repo.db.buildTree(crs))
		}
	}
	return courses, nil
}

func (repo *targetRepository) UpdateCourseDesiredGrade(courseID, letter string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs, ok := repo.db.course.rows[courseID]
	if !ok {
		return course.ErrNotFound
	}
	crs.DesiredLetterGrade = letter
	crs.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *targetRepository) GetSemesterYearID(ownerID, semesterID string) (string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sem, ok := repo.db.semester.rows[semesterID]; ok && sem.OwnerID == ownerID {
		return sem.YearID, nil
	}
	return "", academic.ErrSemesterNotFound
}
