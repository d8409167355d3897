// Package dummydb holds in-memory repository implementations for tests.
package dummydb

import (
	"sync"

	"github.com/planacad/backend/core/area"
	"github.com/planacad/backend/core/period"
	"github.com/planacad/backend/core/plan"
	"github.com/planacad/backend/core/report"
	"github.com/planacad/backend/core/subject"
	"github.com/planacad/backend/core/teacher"
)

type (
	DB struct {
		sync.RWMutex

		teachers    map[int]*teacher.Teacher
		areas       map[int]*area.Area
		assignments map[int]*area.Assignment
		subjects    map[int]*subject.Subject
		periods     map[int]*period.Period

		plans          map[int]*plan.Plan
		states         map[int]*plan.State
		planComments   map[int]*plan.Comment
		reports        map[int]*report.Report
		reportComments map[int]*report.Comment

		pkCount int
	}
)

func Open() (*DB, error) {
	return &DB{
		teachers:       make(map[int]*teacher.Teacher),
		areas:          make(map[int]*area.Area),
		assignments:    make(map[int]*area.Assignment),
		subjects:       make(map[int]*subject.Subject),
		periods:        make(map[int]*period.Period),
		plans:          make(map[int]*plan.Plan),
		states:         make(map[int]*plan.State),
		planComments:   make(map[int]*plan.Comment),
		reports:        make(map[int]*report.Report),
		reportComments: make(map[int]*report.Comment),
	}, nil
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK() int {
	db.pkCount++
	return db.pkCount
}
