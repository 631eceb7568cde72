package employeeerrors

import (
	"aisg-audit/internal/shared/apperror"
	"net/http"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeCodeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee code already exists in this company",
		http.StatusConflict,
	)
	ErrManagerNotFound = apperror.New(
		apperror.CodeNotFound,
		"Manager not found",
		http.StatusNotFound,
	)
	ErrInvalidPosition = apperror.New(
		apperror.CodeInvalidInput,
		"Unknown position code",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrHasSubordinates = apperror.New(
		apperror.CodeInvalidState,
		"Employee still manages other employees",
		http.StatusConflict,
	)
	ErrRankBelowSubordinates = apperror.New(
		apperror.CodeIntegrityViolation,
		"New position must stay above every direct subordinate",
		http.StatusUnprocessableEntity,
	)
	ErrAccessDenied = apperror.New(
		apperror.CodeForbidden,
		"You may only access yourself or employees in your reporting line",
		http.StatusForbidden,
	)
)
