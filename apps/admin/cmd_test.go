package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinckarunia/raha-member-app/core"
	"github.com/vinckarunia/raha-member-app/core/member"
	"github.com/vinckarunia/raha-member-app/core/user"
	emailsvc "github.com/vinckarunia/raha-member-app/services/email"
	inmemdb "github.com/vinckarunia/raha-member-app/storage/database/inmem"
	testutil "github.com/vinckarunia/raha-member-app/tests"
)

type testCLI struct {
	*commandLine
	db      *inmemdb.DB
	usrRepo user.Repository
	out     *bytes.Buffer
}

func setup(t *testing.T) testCLI {
	t.Helper()

	testutil.FreezeTime(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	db := testutil.SeededDB(t)
	usrRepo := inmemdb.NewUserRepository(db)

	memberSvc, err := member.NewService(inmemdb.NewMemberRepository(db), member.MustDefaultSchema())
	require.NoError(t, err)
	tokens, err := user.NewTokenIssuer("test-secret", "Raha Member")
	require.NoError(t, err)
	usrSvc, err := user.NewService(usrRepo, user.LegacyHasher{}, tokens, memberSvc, user.Options{})
	require.NoError(t, err)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// never connects: the goose runner is mocked
	sqlDB, err := sql.Open("postgres", "postgres://localhost/raha_test?sslmode=disable")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	out := new(bytes.Buffer)
	return testCLI{
		commandLine: &commandLine{
			db:         sqlDB,
			usrSvc:     usrSvc,
			mailer:     emailsvc.NewConsoleService(&core.Config{AppName: "Raha Member"}, out),
			validate:   validate,
			translator: translator,
			out:        out,
		},
		db:      db,
		usrRepo: usrRepo,
		out:     out,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		if err != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err == nil || err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
		}
	case err != nil:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_root(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErrStr: `unknown command "lol" for "admin"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(context.Background(), tt.args))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	orig := gooseRunFunc
	t.Cleanup(func() { gooseRunFunc = orig })

	var ran []string
	gooseRunFunc = func(_ context.Context, _ *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		ran = append(ran, command)
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "status", args: []string{"migrate", "status"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(context.Background(), tt.args))
		})
	}
	assert.Equal(t, []string{"up", "up-to", "down", "down-to", "redo", "status"}, ran)

	t.Run("memory engine", func(t *testing.T) {
		cli.commandLine.db = nil
		err := cli.run(context.Background(), []string{"migrate", "up"})
		assert.Equal(t, errNoSQLDB, err)
	})
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	orig := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = orig })

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "--username", inmemdb.DemoUsername}, wantErr: errHelp},
		{
			name: "too short", args: []string{"resetpassword", "--username", inmemdb.DemoUsername},
			extra: extra{pwd: "short"}, wantErrStr: "password must contain at least 8 characters",
		},
		{
			name: "all numeric", args: []string{"resetpassword", "--username", inmemdb.DemoUsername},
			extra: extra{pwd: "12345678"}, wantErrStr: "password cannot be entirely numeric",
		},
		{
			name: "whitespace", args: []string{"resetpassword", "--username", inmemdb.DemoUsername},
			extra: extra{pwd: "correct horse"}, wantErrStr: "password must not contain whitespace",
		},
		{
			name: "similar to username", args: []string{"resetpassword", "--username", inmemdb.DemoOrphanUsername},
			extra: extra{pwd: "asmith12"}, wantErrStr: "password cannot be similar to the username",
		},
	}
	for _, tt := range tests {
		tt := tt
		readPasswordFunc = func(int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(context.Background(), tt.args))
		})
	}

	t.Run("user not found", func(t *testing.T) {
		readPasswordFunc = func(int) ([]byte, error) { return []byte("Tr0ub4dor&3"), nil }
		err := cli.run(context.Background(), []string{"resetpassword", "--username", "ghost"})
		assert.True(t, core.IsNotFound(err), "got %v", err)
	})

	t.Run("reset", func(t *testing.T) {
		ctx := context.Background()
		before, err := cli.usrRepo.GetCredential(ctx, inmemdb.DemoPersonID)
		require.NoError(t, err)

		readPasswordFunc = func(int) ([]byte, error) { return []byte("Tr0ub4dor&3"), nil }
		require.NoError(t, cli.run(ctx, []string{"resetpassword", "--username", inmemdb.DemoUsername}))

		after, err := cli.usrRepo.GetCredential(ctx, inmemdb.DemoPersonID)
		require.NoError(t, err)
		assert.NotEqual(t, before.PasswordHash, after.PasswordHash)
		assert.True(t, user.LegacyHasher{}.Verify(after.PasswordHash, "Tr0ub4dor&3", inmemdb.DemoPersonID))
		assert.Contains(t, cli.out.String(), `Password of "jdoe" updated`)
		assert.Contains(t, cli.out.String(), "Subject: [Raha Member] Your password was changed")
		assert.Contains(t, cli.out.String(), "Notice sent to john.doe@example.com")
	})

	t.Run("no email on file", func(t *testing.T) {
		cli.out.Reset()
		readPasswordFunc = func(int) ([]byte, error) { return []byte("Tr0ub4dor&3"), nil }
		require.NoError(t, cli.run(context.Background(), []string{"resetpassword", "--username", inmemdb.DemoOrphanUsername}))
		assert.Contains(t, cli.out.String(), "No email on file, notice skipped")
		assert.NotContains(t, cli.out.String(), "Subject:")
	})
}

func Test_commandLine_purgeTokens(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()
	now := core.NowFunc().UTC()

	for i, exp := range []time.Time{now.Add(-time.Hour), now.Add(-time.Minute), now.Add(time.Hour)} {
		_, err := cli.usrRepo.CreateToken(ctx, user.AccessToken{
			PersonID:  inmemdb.DemoPersonID,
			Name:      "test",
			TokenHash: user.HashTokenID(strconv.Itoa(i)),
			ExpiresAt: exp,
			CreatedAt: now.Add(-2 * time.Hour),
		})
		require.NoError(t, err)
	}

	require.NoError(t, cli.run(ctx, []string{"purgetokens"}))
	assert.Contains(t, cli.out.String(), "Deleted 2 expired token(s)")
	assert.Len(t, cli.db.Tokens(inmemdb.DemoPersonID), 1)
}
