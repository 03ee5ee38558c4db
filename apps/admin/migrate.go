package main

import (
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/campusconnect/hub/storage/database"
)

var migrateRunFunc = runMigration // mockable

func (cli *commandLine) migrate(args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}
	return migrateRunFunc(cli.db, command, args...)
}

func runMigration(db *sqlx.DB, command string, args ...string) error {
	m, err := database.NewMigrator(db)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "version":
		var version uint
		var dirty bool
		if version, dirty, err = m.Version(); err == nil {
			fmt.Printf("version: %d (dirty: %t)\n", version, dirty)
		}
	case "force":
		if len(args) == 0 {
			return errors.New("force must be of form: migrate force VERSION")
		}
		var version int
		if version, err = strconv.Atoi(args[0]); err != nil {
			return errors.Errorf("version must be a number (got %q)", args[0])
		}
		err = m.Force(version)
	case "steps":
		if len(args) == 0 {
			return errors.New("steps must be of form: migrate steps N")
		}
		var n int
		if n, err = strconv.Atoi(args[0]); err != nil {
			return errors.Errorf("steps must be a number (got %q)", args[0])
		}
		err = m.Steps(n)
	default:
		return errors.Errorf("%q: no such command", command)
	}

	if err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
