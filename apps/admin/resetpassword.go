package main

import (
	sqlxrepos "github.com/tmusoni/gradeplan/storage/database/sqlx"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	db, err := cli.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := sqlxrepos.NewUserRepository(db)
	usr, err := repo.GetUserByEmail(email)
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := repo.UpdateUser(usr); err != nil {
		return err
	}
	logger.Printf("password reset for %s", usr.Email)
	return nil
}
