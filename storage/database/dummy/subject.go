package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/planacad/backend/core/subject"
)

type subjectRepository struct {
	db *DB
}

var _ subject.Repository = (*subjectRepository)(nil)

func NewSubjectRepository(db *DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) query() []subject.Subject {
	subjects := make([]subject.Subject, 0, len(repo.db.subjects))
	for _, s := range repo.db.subjects {
		subjects = append(subjects, *s)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })
	return subjects
}

func (repo *subjectRepository) CheckCodeUniqueness(_ context.Context, code string, excluded ...subject.Subject) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.query() {
		if s.Code != code {
			continue
		}
		var excl bool
		for _, e := range excluded {
			if e.ID == s.ID {
				excl = true
				break
			}
		}
		if !excl {
			return subject.ErrCodeExists
		}
	}
	return nil
}

func (repo *subjectRepository) CreateSubject(_ context.Context, s subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s.ID = repo.db.nextPK()
	repo.db.subjects[s.ID] = &s
	return s, nil
}

func (repo *subjectRepository) QueryAllSubjects(_ context.Context) ([]subject.SubjectInfo, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	infos := make([]subject.SubjectInfo, 0, len(repo.db.subjects))
	for _, s := range repo.query() {
		info := subject.SubjectInfo{Subject: s}
		if a, ok := repo.db.areas[s.AreaID]; ok {
			info.AreaName = a.Name
			info.AreaCode = a.Code
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (repo *subjectRepository) GetSubjectByID(_ context.Context, id int) (subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.subjects[id]; ok {
		return *s, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) SearchSubjects(_ context.Context, query string) ([]subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	query = strings.ToLower(query)
	var subjects []subject.Subject
	for _, s := range repo.query() {
		if strings.Contains(strings.ToLower(s.Name), query) ||
			strings.Contains(strings.ToLower(s.Code), query) ||
			strings.Contains(strings.ToLower(s.Course), query) {
			subjects = append(subjects, s)
		}
	}
	return subjects, nil
}

func (repo *subjectRepository) UpdateSubject(_ context.Context, s subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.subjects[s.ID]
	if !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	orig.Code = s.Code
	orig.Name = s.Name
	orig.Description = s.Description
	orig.Course = s.Course
	orig.Group = s.Group
	orig.AreaID = s.AreaID
	return *orig, nil
}

func (repo *subjectRepository) DeleteSubject(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.subjects, id)
	return nil
}
