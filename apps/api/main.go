package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"

	"github.com/campusconnect/hub/core"
	"github.com/campusconnect/hub/core/analytics"
	"github.com/campusconnect/hub/core/event"
	"github.com/campusconnect/hub/core/news"
	"github.com/campusconnect/hub/core/resource"
	"github.com/campusconnect/hub/core/user"

	echoapi "github.com/campusconnect/hub/apps/api/echo"
	appfs "github.com/campusconnect/hub/fs"
	emailsvc "github.com/campusconnect/hub/services/email"
	logsvc "github.com/campusconnect/hub/services/logger"
	"github.com/campusconnect/hub/storage/database"
	postgresdb "github.com/campusconnect/hub/storage/database/postgres"
)

func main() {
	conf := core.InitConf()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	core.SetTemplateFS(appfs.FS)

	// set up DB
	db, err := setUpDB(conf)
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
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	tx := core.NewTransactor(db)
	usrSvc := user.NewService(tx, postgresdb.NewUserRepository(db), mailSvc)
	newsSvc := news.NewService(tx, postgresdb.NewNewsRepository(db))
	eventSvc := event.NewService(tx, postgresdb.NewEventRepository(db))
	resourceSvc := resource.NewService(tx, postgresdb.NewResourceRepository(db))
	analyticsSvc := analytics.NewService(tx, postgresdb.NewAnalyticsRepository(db))

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	server := echoapi.NewServer(
		conf.Server.Address(),
		shutdown,
		&echoapi.Deps{
			Logger:       logger,
			UserSvc:      usrSvc,
			NewsSvc:      newsSvc,
			EventSvc:     eventSvc,
			ResourceSvc:  resourceSvc,
			AnalyticsSvc: analyticsSvc,
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	select {
	case err = <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func setUpDB(conf *core.Config) (db *sqlx.DB, err error) {
	if err = database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}
	if db, err = database.Open(conf); err != nil {
		return nil, err
	}
	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
