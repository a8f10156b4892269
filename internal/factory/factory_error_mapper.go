package factory

import (
	"errors"
	"strings"

	factoryerrors "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/factory/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// mapRepositoryError turns a unique-index race (two creates passing the
// pre-check at once) into the same Conflict the pre-check would return.
func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return factoryerrors.ErrFactoryNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case uniqueNameIndex:
			return factoryerrors.ErrFactoryNameExists
		case uniqueCodeIndex:
			return factoryerrors.ErrFactoryCodeExists
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") {
		switch {
		case strings.Contains(errMsg, uniqueNameIndex):
			return factoryerrors.ErrFactoryNameExists
		case strings.Contains(errMsg, uniqueCodeIndex):
			return factoryerrors.ErrFactoryCodeExists
		}
	}

	return err
}
