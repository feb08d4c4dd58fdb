package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "gear-guard/pkg/errors"
)

func parseID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewHttpError(
			http.StatusBadRequest,
			"Неверный формат ID",
			err,
			map[string]interface{}{"param": c.Param("id")},
		)
	}
	return id, nil
}

// bindAndValidate читает JSON и прогоняет его через валидатор echo.
func bindAndValidate(c echo.Context, payload interface{}) error {
	if err := c.Bind(payload); err != nil {
		return apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil)
	}
	return c.Validate(payload)
}
