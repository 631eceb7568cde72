package orguniterrors

import (
	"aisg-audit/internal/shared/apperror"
	"net/http"
)

var (
	ErrOrgUnitNotFound = apperror.New(
		apperror.CodeNotFound,
		"Organization unit not found",
		http.StatusNotFound,
	)
	ErrOrgUnitCodeExists = apperror.New(
		apperror.CodeConflict,
		"Organization unit code already exists in this company",
		http.StatusConflict,
	)
	ErrOrgUnitInUse = apperror.New(
		apperror.CodeInvalidState,
		"Organization unit still has employees assigned",
		http.StatusConflict,
	)
)
