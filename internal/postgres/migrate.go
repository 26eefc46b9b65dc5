package postgres

import (
	"context"
	"embed"
	"io/fs"
	"sort"

	ierr "github.com/yadgarautos/jobfiles/internal/errors"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migration is one embedded schema script
type Migration struct {
	Name string
	SQL  string
}

// Migrations lists the embedded scripts in file name order
func Migrations() ([]Migration, error) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	sort.Strings(names)

	result := make([]Migration, 0, len(names))
	for _, name := range names {
		script, err := migrations.ReadFile(name)
		if err != nil {
			return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
		}
		result = append(result, Migration{Name: name, SQL: string(script)})
	}
	return result, nil
}

// Migrate applies every embedded migration inside one transaction.
// The scripts are idempotent so re-running is safe.
func (db *DB) Migrate(ctx context.Context) error {
	scripts, err := Migrations()
	if err != nil {
		return err
	}

	return db.WithTx(ctx, func(ctx context.Context) error {
		for _, m := range scripts {
			db.logger.Infow("applying migration", "file", m.Name)
			if _, err := db.GetQuerier(ctx).ExecContext(ctx, m.SQL); err != nil {
				return ierr.WithError(err).
					WithHintf("migration %s failed", m.Name).
					Mark(ierr.ErrDatabase)
			}
		}
		return nil
	})
}
