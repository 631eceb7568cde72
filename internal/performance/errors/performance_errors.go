package performanceerrors

import (
	"aisg-audit/internal/shared/apperror"
	"net/http"
)

var (
	ErrPerformanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"Performance record not found",
		http.StatusNotFound,
	)
	ErrInvalidMargin = apperror.New(
		apperror.CodeInvalidInput,
		"Margin is not a valid number",
		http.StatusBadRequest,
	)
	ErrInvalidNA = apperror.New(
		apperror.CodeInvalidInput,
		"NA is not a valid number",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrIncompleteQuarter = apperror.New(
		apperror.CodeIncompleteData,
		"Quarter is missing monthly performance data",
		http.StatusUnprocessableEntity,
	)
)
