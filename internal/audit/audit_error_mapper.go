package audit

import (
	"errors"
	"strings"

	auditerrors "aisg-audit/internal/audit/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniquePeriodConstraint = "uq_audit_employee_period"

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return auditerrors.ErrAuditNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == uniquePeriodConstraint {
		return auditerrors.ErrAuditAlreadyExists
	}

	if strings.Contains(strings.ToLower(err.Error()), uniquePeriodConstraint) {
		return auditerrors.ErrAuditAlreadyExists
	}

	return err
}
