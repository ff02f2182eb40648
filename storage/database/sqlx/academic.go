package sqlxrepos

import (
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tmusoni/gradeplan/core"
	"github.com/tmusoni/gradeplan/core/academic"
)

type academicRepository struct {
	db sqlx.Ext
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *sqlx.DB) academic.Repository {
	return &academicRepository{db: db}
}

func (repo *academicRepository) CreateYear(yr academic.Year) (academic.Year, error) {
	yr.ID = uuid.New().String()
	_, err := repo.db.Exec(`
		INSERT INTO academic_year (id, owner_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		yr.ID, yr.OwnerID, yr.Name, yr.CreatedAt, yr.UpdatedAt,
	)
	if err != nil {
		return academic.Year{}, errors.Wrap(err, "creating academic year")
	}
	return yr, nil
}

func (repo *academicRepository) QueryYears(ownerID string, orderings ...core.DBOrdering) ([]academic.Year, error) {
	years := make([]academic.Year, 0)
	err := sqlx.Select(repo.db, &years, `
		SELECT id, owner_id, name, created_at, updated_at
		FROM academic_year
		WHERE owner_id = $1
		ORDER BY `+orderByClause(orderings), ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying academic years")
	}
	return years, nil
}

func (repo *academicRepository) GetYear(ownerID, id string) (academic.Year, error) {
	var yr academic.Year
	err := sqlx.Get(repo.db, &yr, `
		SELECT id, owner_id, name, created_at, updated_at
		FROM academic_year
		WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return academic.Year{}, trapNoRowsErr(err, academic.ErrYearNotFound, "getting academic year")
	}
	return yr, nil
}

func (repo *academicRepository) UpdateYear(yr academic.Year) (academic.Year, error) {
	res, err := repo.db.Exec(`
		UPDATE academic_year
		SET name = $3, updated_at = $4
		WHERE id = $1 AND owner_id = $2`,
		yr.ID, yr.OwnerID, yr.Name, yr.UpdatedAt,
	)
	if err != nil {
		return academic.Year{}, errors.Wrap(err, "updating academic year")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return academic.Year{}, academic.ErrYearNotFound
	}
	return repo.GetYear(yr.OwnerID, yr.ID)
}

func (repo *academicRepository) DeleteYearsByID(ownerID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM academic_year WHERE owner_id = ? AND id IN (?)`, ownerID, ids)
	if err != nil {
		return errors.Wrap(err, "deleting academic years")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting academic years")
	}
	return nil
}

func (repo *academicRepository) CreateSemester(sem academic.Semester) (academic.Semester, error) {
	sem.ID = uuid.New().String()
	_, err := repo.db.Exec(`
		INSERT INTO semester (id, owner_id, year_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sem.ID, sem.OwnerID, sem.YearID, sem.Name, sem.CreatedAt, sem.UpdatedAt,
	)
	if err != nil {
		return academic.Semester{}, errors.Wrap(err, "creating semester")
	}
	return sem, nil
}

func (repo *academicRepository) QuerySemesters(ownerID string, orderings ...core.DBOrdering) ([]academic.Semester, error) {
	sems := make([]academic.Semester, 0)
	err := sqlx.Select(repo.db, &sems, `
		SELECT id, owner_id, year_id, name, created_at, updated_at
		FROM semester
		WHERE owner_id = $1
		ORDER BY `+orderByClause(orderings), ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying semesters")
	}
	return sems, nil
}

func (repo *academicRepository) QuerySemestersByYear(ownerID, yearID string, orderings ...core.DBOrdering) ([]academic.Semester, error) {
	sems := make([]academic.Semester, 0)
	err := sqlx.Select(repo.db, &sems, `
		SELECT id, owner_id, year_id, name, created_at, updated_at
		FROM semester
		WHERE owner_id = $1 AND year_id = $2
		ORDER BY `+orderByClause(orderings), ownerID, yearID)
	if err != nil {
		return nil, errors.Wrap(err, "querying semesters")
	}
	return sems, nil
}

func (repo *academicRepository) GetSemester(ownerID, id string) (academic.Semester, error) {
	var sem academic.Semester
	err := sqlx.Get(repo.db, &sem, `
		SELECT id, owner_id, year_id, name, created_at, updated_at
		FROM semester
		WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return academic.Semester{}, trapNoRowsErr(err, academic.ErrSemesterNotFound, "getting semester")
	}
	return sem, nil
}

func (repo *academicRepository) UpdateSemester(sem academic.Semester) (academic.Semester, error) {
	res, err := repo.db.Exec(`
		UPDATE semester
		SET year_id = COALESCE(NULLIF($3, ''), year_id), name = $4, updated_at = $5
		WHERE id = $1 AND owner_id = $2`,
		sem.ID, sem.OwnerID, sem.YearID, sem.Name, sem.UpdatedAt,
	)
	if err != nil {
		return academic.Semester{}, errors.Wrap(err, "updating semester")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return academic.Semester{}, academic.ErrSemesterNotFound
	}
	return repo.GetSemester(sem.OwnerID, sem.ID)
}

func (repo *academicRepository) DeleteSemestersByID(ownerID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM semester WHERE owner_id = ? AND id IN (?)`, ownerID, ids)
	if err != nil {
		return errors.Wrap(err, "deleting semesters")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting semesters")
	}
	return nil
}

// orderableColumns whitelists the columns an API ordering may reference.
var orderableColumns = map[string]bool{
	"name":       true,
	"created_at": true,
}

// orderByClause renders orderings into an ORDER BY body, skipping columns
// that are not whitelisted. Defaults to insertion order.
func orderByClause(orderings []core.DBOrdering) string {
	var terms []string
	for _, ord := range orderings {
		if orderableColumns[ord.Field] {
			terms = append(terms, ord.String())
		}
	}
	terms = append(terms, "created_at", "id")
	return strings.Join(terms, ", ")
}
