package dig_container

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	echoapi "github.com/vinckarunia/raha-member-app/apps/api/echo"
	"github.com/vinckarunia/raha-member-app/core"
	"github.com/vinckarunia/raha-member-app/core/attendance"
	"github.com/vinckarunia/raha-member-app/core/member"
	"github.com/vinckarunia/raha-member-app/core/user"
	emailsvc "github.com/vinckarunia/raha-member-app/services/email"
	logsvc "github.com/vinckarunia/raha-member-app/services/logger"
	"github.com/vinckarunia/raha-member-app/storage/database"
	inmemdb "github.com/vinckarunia/raha-member-app/storage/database/inmem"
	sqlxrepos "github.com/vinckarunia/raha-member-app/storage/database/sqlx"
)

const (
	EngineMemory   = "memory"
	EnginePostgres = "postgres"

	connectTimeout = 30 * time.Second
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Store is every repository backed by the configured engine.
	Store struct {
		dig.Out
		SQL        *sql.DB // nil for the memory engine
		Closer     io.Closer
		Pinger     core.Pinger
		Members    member.Repository
		Users      user.Repository
		Attendance attendance.Repository
	}

	serverParams struct {
		dig.In
		Conf       *core.Config
		Logger     core.Logger
		ZapLogger  *zap.Logger
		UserSvc    *user.Service
		MemberSvc  *member.Service
		HistorySvc *attendance.Service
		Validate   *validator.Validate
		Translator ut.Translator
		Pinger     core.Pinger
	}
)

func newZapLogger(conf *core.Config) (*zap.Logger, error) {
	return logsvc.NewZapLogger(conf.Log)
}

func newLogger(conf *core.Config, zl *zap.Logger) core.Logger {
	logger := logsvc.NewRollbarLogger(zl.Named("api"), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config, zl *zap.Logger) core.Logger {
	logger := logsvc.NewRollbarLogger(zl.Named("db"), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

// NewStore opens the configured engine. The memory engine starts with the demo data.
func NewStore(conf *core.Config, loggerParam DBLoggerParam) (Store, error) {
	logger := loggerParam.Logger

	switch conf.Database.Engine {
	case EngineMemory:
		db := inmemdb.Open()
		inmemdb.Seed(db)
		logger.Warn("using the in-memory store seeded with demo data")
		return Store{
			Closer:     db,
			Pinger:     db,
			Members:    inmemdb.NewMemberRepository(db),
			Users:      inmemdb.NewUserRepository(db),
			Attendance: inmemdb.NewAttendanceRepository(db),
		}, nil

	case EnginePostgres, "":
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		db, err := database.Open(ctx, conf)
		if err != nil {
			return Store{}, err
		}
		return Store{
			SQL:        db.DB,
			Closer:     db,
			Pinger:     db,
			Members:    sqlxrepos.NewMemberRepository(db),
			Users:      sqlxrepos.NewUserRepository(db),
			Attendance: sqlxrepos.NewAttendanceRepository(db),
		}, nil

	default:
		return Store{}, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}
}

func newPasswordHasher(conf *core.Config) (user.PasswordHasher, error) {
	return user.NewPasswordHasher(conf.Auth.PasswordScheme)
}

func newTokenIssuer(conf *core.Config) (*user.TokenIssuer, error) {
	return user.NewTokenIssuer(conf.SecretKey, conf.AppName)
}

func newUserService(
	conf *core.Config,
	repo user.Repository,
	hasher user.PasswordHasher,
	tokens *user.TokenIssuer,
	profiles *member.Service,
) (*user.Service, error) {
	return user.NewService(repo, hasher, tokens, profiles, user.Options{
		TokenTTL:    conf.Auth.TokenTTL,
		RememberTTL: conf.Auth.RememberTTL,
	})
}

func newServer(p serverParams) (*echoapi.Server, error) {
	return echoapi.NewServer(echoapi.Options{
		Conf:       p.Conf,
		Logger:     p.Logger,
		ReqLogger:  p.ZapLogger.Named("http"),
		AuthSvc:    p.UserSvc,
		ProfileSvc: p.MemberSvc,
		HistorySvc: p.HistorySvc,
		Validate:   echoapi.Validator{Validate: p.Validate, Translator: p.Translator},
		Pinger:     p.Pinger,
	})
}

func newMailer(conf *core.Config) (core.EmailService, error) {
	return emailsvc.New(conf, os.Stdout)
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate
}

// New returns a new dependency injection dig.Container
func New(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newZapLogger))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(NewStore))
	must(c.Provide(member.DefaultSchema))
	must(c.Provide(member.NewService))
	must(c.Provide(newPasswordHasher))
	must(c.Provide(newTokenIssuer))
	must(c.Provide(newUserService))
	must(c.Provide(attendance.NewService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newMailer))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
