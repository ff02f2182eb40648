package main

import (
	"fmt"

	"github.com/trezcool/goose"

	appfs "github.com/tmusoni/gradeplan/fs"
)

func (cli *commandLine) migrate(command string) error {
	db, err := cli.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	switch command {
	case "up":
		return goose.Up(db.DB, appfs.FS, "migrations")
	case "up-by-one":
		return goose.UpByOne(db.DB, appfs.FS, "migrations")
	case "down":
		return goose.Down(db.DB, appfs.FS, "migrations")
	case "redo":
		return goose.Redo(db.DB, appfs.FS, "migrations")
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
}
