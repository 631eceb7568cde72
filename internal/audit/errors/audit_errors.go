package auditerrors

import (
	"aisg-audit/internal/shared/apperror"
	"net/http"
)

var (
	ErrAuditNotFound = apperror.New(
		apperror.CodeNotFound,
		"Audit not found",
		http.StatusNotFound,
	)
	ErrAuditAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"An audit already exists for this employee and period",
		http.StatusConflict,
	)
	ErrIncompletePerformance = apperror.New(
		apperror.CodeIncompleteData,
		"Three months of performance data are required",
		http.StatusUnprocessableEntity,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrAccessDenied = apperror.New(
		apperror.CodeForbidden,
		"You may only audit yourself or employees in your reporting line",
		http.StatusForbidden,
	)
	ErrHardDeleteForbidden = apperror.New(
		apperror.CodeForbidden,
		"Only administrators may permanently delete audits",
		http.StatusForbidden,
	)
)
