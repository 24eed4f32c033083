package dig_container

import (
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	echoapi "github.com/vinckarunia/raha-member-app/apps/api/echo"
	"github.com/vinckarunia/raha-member-app/core"
	"github.com/vinckarunia/raha-member-app/core/user"
)

func memoryConfig(scheme string) func() *core.Config {
	return func() *core.Config {
		conf := &core.Config{Env: "TEST", TestMode: true, AppName: "Raha Member", SecretKey: "test-secret"}
		conf.Database.Engine = EngineMemory
		conf.Auth.PasswordScheme = scheme
		conf.Server.Address = ":0"
		conf.Server.DisableReqLogs = true
		conf.Email.Backend = "console"
		conf.Email.FromAddress = "no-reply@raha.local"
		conf.Log.Level = "error"
		return conf
	}
}

func TestNew(t *testing.T) {
	for _, scheme := range []string{"", user.SchemeLegacySHA256, user.SchemeBcrypt} {
		t.Run("scheme "+scheme, func(t *testing.T) {
			c := New(memoryConfig(scheme))

			err := c.Invoke(func(
				sqlDB *sql.DB,
				closer io.Closer,
				userSvc *user.Service,
				mailer core.EmailService,
				server *echoapi.Server,
			) {
				defer closer.Close()
				assert.Nil(t, sqlDB)
				assert.NotNil(t, userSvc)
				assert.NotNil(t, mailer)

				rec := httptest.NewRecorder()
				server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
				assert.Equal(t, http.StatusOK, rec.Code)
			})
			require.NoError(t, err)
		})
	}
}

func TestNewStore_unknownEngine(t *testing.T) {
	conf := memoryConfig("")()
	conf.Database.Engine = "oracle"
	_, err := NewStore(conf, DBLoggerParam{Logger: newLogger(conf, mustZap(t, conf))})
	assert.EqualError(t, err, `unknown database engine "oracle"`)
}

func mustZap(t *testing.T, conf *core.Config) *zap.Logger {
	t.Helper()
	zl, err := newZapLogger(conf)
	require.NoError(t, err)
	return zl
}
