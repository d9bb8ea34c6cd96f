package gormrepo

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// notFound maps gorm's missing-row error to the domain sentinel.
func notFound(err, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

var forUpdate = clause.Locking{Strength: "UPDATE"}
