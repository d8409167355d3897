package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/planacad/backend/core/area"
)

type areaRepository struct {
	db *DB
}

var _ area.Repository = (*areaRepository)(nil)

func NewAreaRepository(db *DB) *areaRepository {
	return &areaRepository{db: db}
}

func (repo *areaRepository) query() []area.Area {
	areas := make([]area.Area, 0, len(repo.db.areas))
	for _, a := range repo.db.areas {
		areas = append(areas, *a)
	}
	sort.Slice(areas, func(i, j int) bool { return areas[i].ID < areas[j].ID })
	return areas
}

func (repo *areaRepository) CheckCodeUniqueness(_ context.Context, code string, excluded ...area.Area) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, a := range repo.query() {
		if a.Code != code {
			continue
		}
		var excl bool
		for _, e := range excluded {
			if e.ID == a.ID {
				excl = true
				break
			}
		}
		if !excl {
			return area.ErrCodeExists
		}
	}
	return nil
}

func (repo *areaRepository) CreateArea(_ context.Context, a area.Area) (area.Area, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a.ID = repo.db.nextPK()
	repo.db.areas[a.ID] = &a
	return a, nil
}

func (repo *areaRepository) QueryAllAreas(_ context.Context) ([]area.Area, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *areaRepository) GetAreaByID(_ context.Context, id int) (area.Area, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.areas[id]; ok {
		return *a, nil
	}
	return area.Area{}, area.ErrNotFound
}

func (repo *areaRepository) SearchAreas(_ context.Context, query string) ([]area.Area, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	query = strings.ToLower(query)
	var areas []area.Area
	for _, a := range repo.query() {
		if strings.Contains(strings.ToLower(a.Name), query) ||
			strings.Contains(strings.ToLower(a.Code), query) {
			areas = append(areas, a)
		}
	}
	return areas, nil
}

func (repo *areaRepository) UpdateArea(_ context.Context, a area.Area) (area.Area, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.areas[a.ID]
	if !ok {
		return area.Area{}, area.ErrNotFound
	}
	orig.Name = a.Name
	orig.Code = a.Code
	return *orig, nil
}

func (repo *areaRepository) DeleteArea(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.areas, id)
	return nil
}

func (repo *areaRepository) CreateAssignment(_ context.Context, as area.Assignment) (area.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	as.ID = repo.db.nextPK()
	repo.db.assignments[as.ID] = &as
	return as, nil
}

func (repo *areaRepository) GetAssignmentByID(_ context.Context, id int) (area.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if as, ok := repo.db.assignments[id]; ok {
		return *as, nil
	}
	return area.Assignment{}, area.ErrAssignmentNotFound
}

func (repo *areaRepository) queryAssignments() []area.AssignmentInfo {
	infos := make([]area.AssignmentInfo, 0, len(repo.db.assignments))
	for _, as := range repo.db.assignments {
		info := area.AssignmentInfo{Assignment: *as}
		if t, ok := repo.db.teachers[as.TeacherID]; ok {
			info.TeacherName = t.Name
		}
		if a, ok := repo.db.areas[as.AreaID]; ok {
			info.AreaName = a.Name
			info.AreaCode = a.Code
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

func (repo *areaRepository) QueryAllAssignments(_ context.Context) ([]area.AssignmentInfo, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.queryAssignments(), nil
}

func (repo *areaRepository) QueryTeacherAssignments(_ context.Context, teacherID int) ([]area.AssignmentInfo, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var infos []area.AssignmentInfo
	for _, info := range repo.queryAssignments() {
		if info.TeacherID == teacherID {
			infos = append(infos, info)
		}
	}
	return infos, nil
}

func (repo *areaRepository) UpdateAssignment(_ context.Context, as area.Assignment) (area.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.assignments[as.ID]
	if !ok {
		return area.Assignment{}, area.ErrAssignmentNotFound
	}
	orig.TeacherID = as.TeacherID
	orig.AreaID = as.AreaID
	return *orig, nil
}
