package echoapi

import (
	"mime/multipart"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/planacad/backend/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// formFile opens the uploaded "archivo" part of a multipart request.
func formFile(ctx echo.Context) (multipart.File, error) {
	fh, err := ctx.FormFile("archivo")
	if err != nil {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "archivo", Error: "el archivo es requerido"})
	}
	src, err := fh.Open()
	return src, errors.Wrap(err, "opening uploaded file")
}
