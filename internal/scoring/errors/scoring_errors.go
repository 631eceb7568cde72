package scoringerrors

import (
	"aisg-audit/internal/shared/apperror"
	"net/http"
)

var (
	ErrMissingPillars = apperror.New(
		apperror.CodeIncompleteData,
		"All 18 pillar answers are required",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidPillarAnswer = apperror.New(
		apperror.CodeInvalidInput,
		"Pillar answer is invalid",
		http.StatusBadRequest,
	)
)
