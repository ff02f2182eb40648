package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/tmusoni/gradeplan/apps/api/echo"
	"github.com/tmusoni/gradeplan/core"
	"github.com/tmusoni/gradeplan/core/academic"
	"github.com/tmusoni/gradeplan/core/course"
	"github.com/tmusoni/gradeplan/core/target"
	"github.com/tmusoni/gradeplan/core/user"
	emailsvc "github.com/tmusoni/gradeplan/services/email"
	logsvc "github.com/tmusoni/gradeplan/services/logger"
	"github.com/tmusoni/gradeplan/storage/database"
	sqlxrepos "github.com/tmusoni/gradeplan/storage/database/sqlx"
)

const shutdownTimeout = 20 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	// set up DB
	db, err := setUpDB()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc)
	targetSvc := target.NewService(sqlxrepos.NewTargetRepository(db))
	academicSvc := academic.NewService(sqlxrepos.NewAcademicRepository(db), targetSvc)
	courseSvc := course.NewService(sqlxrepos.NewCourseRepository(db), targetSvc)

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(
		&echoapi.Options{
			Address:     core.Conf.Server.Addr,
			Logger:      logger,
			UserSvc:     usrSvc,
			AcademicSvc: academicSvc,
			CourseSvc:   courseSvc,
			TargetSvc:   targetSvc,
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func setUpDB() (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		return nil, err
	}

	db, err := database.Open(core.Conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
