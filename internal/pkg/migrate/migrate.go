// Package migrate applies the embedded schema migrations with golang-migrate.
package migrate

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/shandysiswandi/cenety/internal/database"
)

const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

var (
	ErrEmptyDSN         = errors.New("migrate: database url is empty")
	ErrInvalidDirection = errors.New("migrate: direction must be up or down")
)

// Run migrates the database at dsn all the way up or all the way down.
// Being already at the target version is not an error.
func Run(dsn, direction string) error {
	if dsn == "" {
		return ErrEmptyDSN
	}
	if direction != DirectionUp && direction != DirectionDown {
		return fmt.Errorf("%w, got %q", ErrInvalidDirection, direction)
	}

	src, err := iofs.New(database.MigrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if direction == DirectionUp {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
