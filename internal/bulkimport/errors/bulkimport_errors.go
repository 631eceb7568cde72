package bulkimporterrors

import (
	"aisg-audit/internal/shared/apperror"
	"net/http"
)

var (
	ErrFileRequired = apperror.New(
		apperror.CodeInvalidInput,
		"An .xlsx file is required in field 'file'",
		http.StatusBadRequest,
	)
	ErrInvalidWorkbook = apperror.New(
		apperror.CodeInvalidInput,
		"The uploaded file is not a readable .xlsx workbook",
		http.StatusBadRequest,
	)
	ErrMissingColumns = apperror.New(
		apperror.CodeInvalidInput,
		"The workbook is missing required columns",
		http.StatusBadRequest,
	)
	ErrEmptyWorkbook = apperror.New(
		apperror.CodeInvalidInput,
		"The workbook contains no data rows",
		http.StatusBadRequest,
	)
	ErrValidationFailed = apperror.New(
		apperror.CodeInvalidInput,
		"Import rejected: fix the listed rows and resubmit, or use partial=true",
		http.StatusUnprocessableEntity,
	)
	ErrNothingToCommit = apperror.New(
		apperror.CodeInvalidInput,
		"No valid rows to import",
		http.StatusUnprocessableEntity,
	)
	ErrHierarchyRejected = apperror.New(
		apperror.CodeIntegrityViolation,
		"Import rejected: a manager link would break the reporting hierarchy",
		http.StatusUnprocessableEntity,
	)
)
