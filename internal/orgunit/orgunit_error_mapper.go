package orgunit

import (
	"errors"

	orguniterrors "aisg-audit/internal/orgunit/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return orguniterrors.ErrOrgUnitNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_org_unit_code" {
		return orguniterrors.ErrOrgUnitCodeExists
	}

	return err
}
