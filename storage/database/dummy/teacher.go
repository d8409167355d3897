package dummydb

import (
	"context"
	"sort"

	"github.com/planacad/backend/core"
	"github.com/planacad/backend/core/teacher"
)

type teacherRepository struct {
	db *DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *DB) *teacherRepository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) query() []teacher.Teacher {
	teachers := make([]teacher.Teacher, 0, len(repo.db.teachers))
	for _, t := range repo.db.teachers {
		teachers = append(teachers, *t)
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].ID < teachers[j].ID })
	return teachers
}

func (repo *teacherRepository) CheckEmailUniqueness(_ context.Context, email string, excluded ...teacher.Teacher) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, t := range repo.query() {
		if t.Email != email {
			continue
		}
		var excl bool
		for _, e := range excluded {
			if e.ID == t.ID {
				excl = true
				break
			}
		}
		if !excl {
			return teacher.ErrEmailExists
		}
	}
	return nil
}

func (repo *teacherRepository) CreateTeacher(_ context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t.ID = repo.db.nextPK()
	repo.db.teachers[t.ID] = &t
	return t, nil
}

func (repo *teacherRepository) QueryAllTeachers(_ context.Context, ordering ...core.DBOrdering) ([]teacher.Teacher, error) {
	repo.db.RLock()
	teachers := repo.query()
	repo.db.RUnlock()

	// only "nombre" ordering is honored here; listings default to ID order
	for _, ord := range ordering {
		if ord.Field == "nombre" {
			sort.Slice(teachers, func(i, j int) bool {
				if ord.Ascending {
					return teachers[i].Name < teachers[j].Name
				}
				return teachers[i].Name > teachers[j].Name
			})
			break
		}
	}
	return teachers, nil
}

func (repo *teacherRepository) GetTeacherByID(_ context.Context, id int) (teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.teachers[id]; ok {
		return *t, nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) GetTeacherByEmail(_ context.Context, email string) (teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, t := range repo.query() {
		if t.Email == email {
			return t, nil
		}
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) GetTeacherByRole(_ context.Context, role string) (teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, t := range repo.query() {
		if t.Role == role && t.IsActive {
			return t, nil
		}
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) UpdateTeacher(_ context.Context, t teacher.Teacher, isActive, isVerified *bool) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.teachers[t.ID]
	if !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}

	// only save set fields
	if t.PasswordHash != nil {
		orig.PasswordHash = t.PasswordHash
	}
	if isActive != nil {
		orig.IsActive = *isActive
	}
	if isVerified != nil {
		orig.IsVerified = *isVerified
	}
	orig.Name = t.Name
	orig.Email = t.Email
	orig.NationalID = t.NationalID
	orig.Phone = t.Phone
	orig.Address = t.Address
	orig.Role = t.Role
	return *orig, nil
}

func (repo *teacherRepository) DeleteTeacher(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.teachers, id)
	return nil
}
