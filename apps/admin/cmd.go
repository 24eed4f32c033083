package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vinckarunia/raha-member-app/core"
	"github.com/vinckarunia/raha-member-app/core/user"
	"github.com/vinckarunia/raha-member-app/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword     // mockable
	gooseRunFunc     = database.RunMigration // mockable

	errHelp    = errors.New("help provided")
	errNoSQLDB = errors.New("migrations need the postgres engine")
)

// UserAdmin is the part of user.Service the CLI drives.
type UserAdmin interface {
	ResetPassword(ctx context.Context, pr user.PasswordReset) error
	PasswordChangedNotice(ctx context.Context, username string) (*core.EmailMessage, error)
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

type commandLine struct {
	db         *sql.DB // nil for the memory engine
	usrSvc     UserAdmin
	mailer     core.EmailService // optional
	validate   *validator.Validate
	translator ut.Translator
	out        io.Writer
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Raha member portal administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Usage()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	root.AddCommand(
		cli.migrateCmd(),
		cli.resetPasswordCmd(),
		cli.purgeTokensCmd(),
	)
	return root
}

// run executes args (without the program name).
func (cli *commandLine) run(ctx context.Context, args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose command (up, down, status, redo, up-to N, ...) against the embedded migrations",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return errHelp
			}
			if cli.db == nil {
				return errNoSQLDB
			}
			return gooseRunFunc(cmd.Context(), cli.db, args[0], args[1:]...)
		},
	}
}

func (cli *commandLine) resetPasswordCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "resetpassword --username USERNAME",
		Short: "Set a member's password. The password is prompted for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" {
				_ = cmd.Usage()
				return errHelp
			}
			fmt.Fprint(cli.out, "Enter password:")
			pwd, err := readPasswordFunc(int(syscall.Stdin))
			fmt.Fprintln(cli.out)
			if err != nil {
				return errors.Wrap(err, "reading password")
			}
			if len(pwd) == 0 {
				_ = cmd.Usage()
				return errHelp
			}
			return cli.resetPassword(cmd.Context(), username, string(pwd))
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "the member's username")
	return cmd
}

func (cli *commandLine) resetPassword(ctx context.Context, uname, pwd string) error {
	pr := user.PasswordReset{Username: uname, Password: pwd}
	if err := pr.Validate(cli.validate, cli.translator); err != nil {
		return err
	}
	if err := cli.usrSvc.ResetPassword(ctx, pr); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Password of %q updated\n", pr.Username)
	cli.notifyPasswordChanged(ctx, pr.Username)
	return nil
}

// notifyPasswordChanged only warns on failure: the password is already changed.
func (cli *commandLine) notifyPasswordChanged(ctx context.Context, uname string) {
	if cli.mailer == nil {
		return
	}
	msg, err := cli.usrSvc.PasswordChangedNotice(ctx, uname)
	if err == nil && msg != nil {
		err = cli.mailer.Send(ctx, msg)
	}
	switch {
	case err != nil:
		fmt.Fprintf(cli.out, "warning: password notice not sent: %v\n", err)
	case msg == nil:
		fmt.Fprintln(cli.out, "No email on file, notice skipped")
	default:
		fmt.Fprintf(cli.out, "Notice sent to %s\n", msg.To[0].Address)
	}
}

func (cli *commandLine) purgeTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purgetokens",
		Short: "Delete expired access tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := cli.usrSvc.PurgeExpiredTokens(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "Deleted %d expired token(s)\n", n)
			return nil
		},
	}
}
