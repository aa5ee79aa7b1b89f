// Command provision creates an administrator account, or promotes an existing
// one, using the server configuration for database access.
//
//	provision -email admin@example.com [-c config.json] [-d DSN]
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/falcontrade/internal/logging"
	"github.com/dmitrijs2005/falcontrade/internal/server"
	"github.com/dmitrijs2005/falcontrade/internal/server/config"
	"github.com/dmitrijs2005/falcontrade/internal/server/provision"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context) error {
	cfg := config.LoadConfig()

	email, err := provision.ParseEmail(os.Args[1:])
	if err != nil {
		return err
	}

	st, err := server.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.DB.Close()

	a, err := server.NewAuth(ctx, cfg, st, logging.NewJSON(os.Stderr, cfg.LogLevel))
	if err != nil {
		return err
	}
	defer a.Close()

	password, err := provision.GetPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		for i := range password {
			password[i] = 0
		}
	}()

	return provision.Run(ctx, os.Stdout, a.Accounts, email, password)
}
