package dashboard

// Read models for the administrative dashboard. All of these are produced by
// aggregate queries; nothing here is ever written back.

type Totals struct {
	Teachers int `json:"total_profesores" db:"total_profesores"`
	Areas    int `json:"total_areas" db:"total_areas"`
	Subjects int `json:"total_asignaturas" db:"total_asignaturas"`
	Plans    int `json:"total_planificaciones" db:"total_planificaciones"`
	Reports  int `json:"total_informes" db:"total_informes"`
}

type RoleCount struct {
	Role  string `json:"rol" db:"rol"`
	Count int    `json:"cantidad" db:"cantidad"`
}

type StatusCount struct {
	Status string `json:"estado" db:"estado"`
	Count  int    `json:"cantidad" db:"cantidad"`
}

type AreaCount struct {
	AreaID   int    `json:"area_id" db:"area_id"`
	AreaName string `json:"area_nombre" db:"area_nombre"`
	Count    int    `json:"cantidad" db:"cantidad"`
}

type PeriodCount struct {
	PeriodID   int    `json:"periodo_id" db:"periodo_id"`
	PeriodName string `json:"periodo_nombre" db:"periodo_nombre"`
	Count      int    `json:"cantidad" db:"cantidad"`
}

// TeacherSummary breaks a single teacher's plans down by outcome.
type TeacherSummary struct {
	TeacherID    int    `json:"profesor_id" db:"profesor_id"`
	TeacherName  string `json:"profesor_nombre" db:"profesor_nombre"`
	Plans        int    `json:"planificaciones" db:"planificaciones"`
	Pending      int    `json:"pendientes" db:"pendientes"`
	Delivered    int    `json:"entregadas" db:"entregadas"`
	Reviewed     int    `json:"revisadas" db:"revisadas"`
	Approved     int    `json:"aprobadas" db:"aprobadas"`
	NotDelivered int    `json:"no_entregadas" db:"no_entregadas"`
}
