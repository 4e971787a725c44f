package main

import (
	"github.com/pressly/goose/v3"

	appfs "github.com/pocketcoach/coaching/fs"
	"github.com/pocketcoach/coaching/storage/database"
)

var (
	gooseRunFunc = goose.Run     // mockable
	openDBFunc   = database.Open // mockable
)

func (cli *commandLine) migrate(args []string) error {
	db, err := openDBFunc(cli.conf)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(appfs.FS)
	command := args[0]
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(command, db.DB.DB, "migrations", arguments...)
}
