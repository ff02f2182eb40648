package sqlxrepos

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tmusoni/gradeplan/core/academic"
	"github.com/tmusoni/gradeplan/core/course"
	"github.com/tmusoni/gradeplan/core/target"
)

type targetRepository struct {
	db   sqlx.Ext
	conn *sqlx.DB // nil when bound to a transaction
}

var _ target.Repository = (*targetRepository)(nil) // interface compliance check

func NewTargetRepository(db *sqlx.DB) target.Repository {
	return &targetRepository{db: db, conn: db}
}

// Atomic runs fn against a repository bound to a single transaction.
// Nested calls reuse the enclosing transaction.
func (repo *targetRepository) Atomic(fn func(repo target.Repository) error) error {
	if repo.conn == nil {
		return fn(repo)
	}

	tx, err := repo.conn.Beginx()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(&targetRepository{db: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// LockOwner takes a transaction-scoped advisory lock keyed on the owner.
// Under READ COMMITTED, two concurrent coordinator transactions for the same
// owner would otherwise both read a stale session list; the lock makes the
// second one wait until the first commits. Released automatically at commit
// or rollback.
func (repo *targetRepository) LockOwner(ownerID string) error {
	_, err := repo.db.Exec(`SELECT pg_advisory_xact_lock(hashtext($1))`, ownerID)
	return errors.Wrap(err, "locking owner sessions")
}

const sessionColumns = `id, owner_id, scope, year_id, semester_id, target_gpa,
	max_achievable_gpa, gpa_shortfall, disabled_at, created_at, updated_at`

func (repo *targetRepository) FindActiveSessions(ownerID string) ([]target.Session, error) {
	sessions := make([]target.Session, 0)
	err := sqlx.Select(repo.db, &sessions, `
		SELECT `+sessionColumns+`
		FROM target_session
		WHERE owner_id = $1 AND disabled_at IS NULL
		ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying active sessions")
	}
	return sessions, nil
}

func (repo *targetRepository) CreateSession(sess target.Session) (target.Session, error) {
	sess.ID = uuid.New().String()
	_, err := repo.db.Exec(`
		INSERT INTO target_session (id, owner_id, scope, year_id, semester_id, target_gpa,
			max_achievable_gpa, gpa_shortfall, disabled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		sess.ID, sess.OwnerID, sess.Scope, null.StringFromPtr(sess.YearID), null.StringFromPtr(sess.SemesterID),
		sess.TargetGpa, null.Float64FromPtr(sess.MaxAchievableGpa), null.Float64FromPtr(sess.GpaShortfall),
		null.TimeFromPtr(sess.DisabledAt), sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return target.Session{}, errors.Wrap(err, "creating session")
	}
	return sess, nil
}

func (repo *targetRepository) SaveSessionFeasibility(sessionID string, maxAchievableGpa, gpaShortfall *float64) error {
	res, err := repo.db.Exec(`
		UPDATE target_session
		SET max_achievable_gpa = $2, gpa_shortfall = $3, updated_at = $4
		WHERE id = $1`,
		sessionID, null.Float64FromPtr(maxAchievableGpa), null.Float64FromPtr(gpaShortfall), time.Now().UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "saving session feasibility")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return target.ErrNotFound
	}
	return nil
}

func (repo *targetRepository) DisableSession(sessionID string, disabledAt time.Time) error {
	res, err := repo.db.Exec(`
		UPDATE target_session
		SET disabled_at = $2, updated_at = $2
		WHERE id = $1`,
		sessionID, disabledAt,
	)
	if err != nil {
		return errors.Wrap(err, "disabling session")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return target.ErrNotFound
	}
	return nil
}

func (repo *targetRepository) CreateSnapshot(snap target.Snapshot) (target.Snapshot, error) {
	snap.ID = uuid.New().String()
	_, err := repo.db.Exec(`
		INSERT INTO target_snapshot (id, session_id, course_id, previous_desired_letter_grade, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		snap.ID, snap.SessionID, snap.CourseID, snap.PreviousDesiredLetterGrade, snap.CreatedAt,
	)
	if err != nil {
		return target.Snapshot{}, errors.Wrap(err, "creating snapshot")
	}
	return snap, nil
}

func (repo *targetRepository) FindSnapshotsBySession(sessionID string) ([]target.Snapshot, error) {
	snaps := make([]target.Snapshot, 0)
	err := sqlx.Select(repo.db, &snaps, `
		SELECT id, session_id, course_id, previous_desired_letter_grade, created_at
		FROM target_snapshot
		WHERE session_id = $1
		ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying snapshots")
	}
	return snaps, nil
}

func (repo *targetRepository) FindCoursesForScope(ownerID, scope, scopeID string) ([]course.Course, error) {
	courses := make([]course.Course, 0)

	var err error
	switch scope {
	case target.ScopeSemester:
		err = sqlx.Select(repo.db, &courses, `
			SELECT `+courseColumns+`
			FROM course
			WHERE owner_id = $1 AND semester_id = $2
			ORDER BY created_at, id`, ownerID, scopeID)
	case target.ScopeYear:
		err = sqlx.Select(repo.db, &courses, `
			SELECT crs.id, crs.owner_id, crs.semester_id, crs.name, crs.credits,
				crs.desired_letter_grade, crs.grading_method, crs.is_completed,
				crs.actual_letter_grade, crs.actual_percent_grade, crs.created_at, crs.updated_at
			FROM course crs
				JOIN semester s ON crs.semester_id = s.id
			WHERE crs.owner_id = $1 AND s.year_id = $2
			ORDER BY crs.created_at, crs.id`, ownerID, scopeID)
	default: // career
		err = sqlx.Select(repo.db, &courses, `
			SELECT `+courseColumns+`
			FROM course
			WHERE owner_id = $1
			ORDER BY created_at, id`, ownerID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "querying courses for scope")
	}
	if err = loadTrees(repo.db, courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (repo *targetRepository) UpdateCourseDesiredGrade(courseID, letter string) error {
	res, err := repo.db.Exec(`
		UPDATE course
		SET desired_letter_grade = $2, updated_at = $3
		WHERE id = $1`,
		courseID, letter, time.Now().UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "updating desired grade")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo *targetRepository) GetSemesterYearID(ownerID, semesterID string) (string, error) {
	var yearID string
	err := sqlx.Get(repo.db, &yearID,
		`SELECT year_id FROM semester WHERE id = $1 AND owner_id = $2`, semesterID, ownerID)
	if err != nil {
		return "", trapNoRowsErr(err, academic.ErrSemesterNotFound, "resolving semester year")
	}
	return yearID, nil
}
