package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	dig_container "github.com/vinckarunia/raha-member-app/apps/api/di/dig"
	"github.com/vinckarunia/raha-member-app/core"
	"github.com/vinckarunia/raha-member-app/core/user"
)

func main() {
	code := 0
	c := dig_container.New(core.NewConfig)

	err := c.Invoke(func(
		logger core.Logger,
		sqlDB *sql.DB,
		closer io.Closer,
		usrSvc *user.Service,
		mailer core.EmailService,
		validate *validator.Validate,
		translator ut.Translator,
	) {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close", err)
			}
		}()

		cli := commandLine{
			db:         sqlDB,
			usrSvc:     usrSvc,
			mailer:     mailer,
			validate:   validate,
			translator: translator,
			out:        os.Stdout,
		}
		if err := cli.run(context.Background(), os.Args[1:]); err != nil {
			if err != errHelp {
				fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
			}
			code = 1
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		code = 1
	}
	os.Exit(code)
}
