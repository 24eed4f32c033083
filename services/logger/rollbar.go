package logsvc

import (
	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"

	"github.com/vinckarunia/raha-member-app/core"
)

// RollbarLogger reports to rollbar (when enabled) and always writes to zap.
type RollbarLogger struct {
	zl *zap.SugaredLogger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(zl *zap.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.TestMode)
	return &RollbarLogger{zl: zl.Sugar()}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Zap exposes the underlying logger, e.g. for request logs.
func (l RollbarLogger) Zap() *zap.SugaredLogger { return l.zl }

// expected fmt: msg | error, map[string]interface{}, core.Identity
// prepare returns the rollbar args and the zap key/value pairs.
func (l RollbarLogger) prepare(msg string, args []interface{}) ([]interface{}, []interface{}) {
	var idSet bool
	rbArgs := make([]interface{}, 0, len(args)+1)
	rbArgs = append(rbArgs, msg)
	kvs := make([]interface{}, 0, len(args)*2)
	for _, arg := range args {
		switch a := arg.(type) {
		case core.Identity:
			if !idSet { // only one person per item
				rollbar.SetPerson(a.ID, a.Username, a.Email)
				kvs = append(kvs, "user", a.Username)
				idSet = true
			}
		case error:
			rbArgs = append(rbArgs, a)
			kvs = append(kvs, "error", a.Error())
		case map[string]interface{}:
			rbArgs = append(rbArgs, a)
			for k, v := range a {
				kvs = append(kvs, k, v)
			}
		default:
			rbArgs = append(rbArgs, a)
			kvs = append(kvs, "extra", a)
		}
	}
	if !idSet {
		rollbar.ClearPerson()
	}
	return rbArgs, kvs
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rb, kvs := l.prepare(msg, args)
	rollbar.Debug(rb...)
	l.zl.Debugw(msg, kvs...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rb, kvs := l.prepare(msg, args)
	rollbar.Info(rb...)
	l.zl.Infow(msg, kvs...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rb, kvs := l.prepare(msg, args)
	rollbar.Warning(rb...)
	l.zl.Warnw(msg, kvs...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rb, kvs := l.prepare(msg, args)
	rollbar.Error(rb...)
	l.zl.Errorw(msg, kvs...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rb, kvs := l.prepare(msg, args)
	rollbar.Critical(rb...)
	rollbar.Wait()
	l.zl.Fatalw(msg, kvs...)
}
