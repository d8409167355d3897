package plan

import (
	"fmt"
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/planacad/backend/core"
)

// uploadRoot is the fixed prefix of every stored document path.
const uploadRoot = "uploads"

// sanitizeComponent vets a single path component coming from client input.
// Components end up concatenated into remote storage paths, so anything that
// could change directory structure is rejected rather than escaped.
func sanitizeComponent(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." || s == ".." ||
		strings.ContainsAny(s, "/\\\x00") || strings.Contains(s, "..") {
		return "", core.NewValidationError(errors.New("invalid path component"), core.FieldError{
			Field: field,
			Error: "valor no permitido en la ruta del archivo",
		})
	}
	return s, nil
}

// statePath builds the canonical storage location of a submission:
// uploads/{period}/{areaCode}/{course}/{subject}/{stateID}_{teacherID}_{subject}_{status}.pdf
// The directory encodes where the document lives; the file name encodes whose
// it is and the status it carried when last written.
func statePath(stateID, teacherID int, in SubmitInput, status string) (dir, name string, err error) {
	period, err := sanitizeComponent("periodo_nombre", in.PeriodName)
	if err != nil {
		return "", "", err
	}
	area, err := sanitizeComponent("area_codigo", in.AreaCode)
	if err != nil {
		return "", "", err
	}
	course, err := sanitizeComponent("curso_nombre", in.Course)
	if err != nil {
		return "", "", err
	}
	subject, err := sanitizeComponent("nombre_asignatura", in.SubjectName)
	if err != nil {
		return "", "", err
	}

	dir = path.Join(uploadRoot, period, area, course, subject)
	name = fmt.Sprintf("%d_%d_%s_%s.pdf", stateID, teacherID, subject, status)
	return dir, name, nil
}

// dirChain returns the directory and each of its ancestors, shallowest first,
// so callers can create the whole chain one level at a time.
func dirChain(dir string) []string {
	parts := strings.Split(dir, "/")
	chain := make([]string, 0, len(parts))
	for i := range parts {
		chain = append(chain, path.Join(parts[:i+1]...))
	}
	return chain
}
