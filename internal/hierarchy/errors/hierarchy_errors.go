package hierarchyerrors

import (
	"aisg-audit/internal/shared/apperror"
	"net/http"
)

var (
	ErrCircularReference = apperror.New(
		apperror.CodeIntegrityViolation,
		"Manager assignment would create a circular reporting chain",
		http.StatusUnprocessableEntity,
	)
	ErrManagerRankViolation = apperror.New(
		apperror.CodeIntegrityViolation,
		"Manager position must be higher than the employee position",
		http.StatusUnprocessableEntity,
	)
	ErrSelfManagement = apperror.New(
		apperror.CodeIntegrityViolation,
		"Employee cannot be their own manager",
		http.StatusUnprocessableEntity,
	)
	ErrDepthExceeded = apperror.New(
		apperror.CodeInvalidState,
		"Reporting chain is deeper than allowed, possible cycle in stored data",
		http.StatusConflict,
	)
)
