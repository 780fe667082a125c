package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"leadfinder/cmd/internal/utils/apierror"
)

// GetIDParam reads the ":id" path parameter as a positive integer.
func GetIDParam(c echo.Context) (int64, apierror.ErrorResponse) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.NewInvalidParamTypeError("id", "int")
	}
	return id, nil
}
