// Package dummydb provides an in-memory store for tests and local hacking.
// It implements every core Repository without persistence or transactions.
package dummydb

import (
	"sync"

	"github.com/tmusoni/gradeplan/core/academic"
	"github.com/tmusoni/gradeplan/core/course"
	"github.com/tmusoni/gradeplan/core/target"
	"github.com/tmusoni/gradeplan/core/user"
)

type (
	DB struct {
		sync.RWMutex

		// coordMu serializes the target coordinator's Atomic blocks,
		// standing in for the advisory lock the SQL store takes.
		coordMu sync.Mutex

		user       *userTable
		year       *yearTable
		semester   *semesterTable
		course     *courseTable
		category   *categoryTable
		assignment *assignmentTable
		session    *sessionTable
		snapshot   *snapshotTable
	}

	// tables keep rows addressable by ID while the ids slice preserves
	// insertion order, standing in for a serial key's natural ordering
	userTable struct {
		rows map[string]*user.User
		ids  []string
	}
	yearTable struct {
		rows map[string]*academic.Year
		ids  []string
	}
	semesterTable struct {
		rows map[string]*academic.Semester
		ids  []string
	}
	courseTable struct {
		rows map[string]*course.Course
		ids  []string
	}
	categoryTable struct {
		rows map[string]*course.Category
		ids  []string
	}
	assignmentTable struct {
		rows map[string]*course.Assignment
		ids  []string
	}
	sessionTable struct {
		rows map[string]*target.Session
		ids  []string
	}
	snapshotTable struct {
		rows map[string]*target.Snapshot
		ids  []string
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{rows: make(map[string]*user.User)},
		year:       &yearTable{rows: make(map[string]*academic.Year)},
		semester:   &semesterTable{rows: make(map[string]*academic.Semester)},
		course:     &courseTable{rows: make(map[string]*course.Course)},
		category:   &categoryTable{rows: make(map[string]*course.Category)},
		assignment: &assignmentTable{rows: make(map[string]*course.Assignment)},
		session:    &sessionTable{rows: make(map[string]*target.Session)},
		snapshot:   &snapshotTable{rows: make(map[string]*target.Snapshot)},
	}
	return db, nil
}

func dropID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
