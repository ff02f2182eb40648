package main

import (
	"github.com/tmusoni/gradeplan/core"
	"github.com/tmusoni/gradeplan/storage/database"
)

func (cli *commandLine) createDB() error {
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		return err
	}
	logger.Printf("database %q is ready", core.Conf.Database.Name)
	return nil
}
