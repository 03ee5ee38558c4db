package main

import (
	"log"
	"os"

	"github.com/campusconnect/hub/core"
	"github.com/campusconnect/hub/storage/database"
	postgresdb "github.com/campusconnect/hub/storage/database/postgres"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.InitConf()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	// start CLI
	cli := commandLine{
		db:           db,
		usrRepo:      postgresdb.NewUserRepository(db),
		newsRepo:     postgresdb.NewNewsRepository(db),
		eventRepo:    postgresdb.NewEventRepository(db),
		resourceRepo: postgresdb.NewResourceRepository(db),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
