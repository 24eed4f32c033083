package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vinckarunia/raha-member-app/core"
	"github.com/vinckarunia/raha-member-app/core/attendance"
	"github.com/vinckarunia/raha-member-app/core/member"
	"github.com/vinckarunia/raha-member-app/core/user"
	logsvc "github.com/vinckarunia/raha-member-app/services/logger"
	inmemdb "github.com/vinckarunia/raha-member-app/storage/database/inmem"
	testutil "github.com/vinckarunia/raha-member-app/tests"
)

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

type testApp struct {
	srv    *Server
	db     *inmemdb.DB
	conf   *core.Config
	tokens *user.TokenIssuer
}

func testConfig() *core.Config {
	return &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Raha Member",
		SecretKey: "test-secret",
		Auth: core.AuthConfig{
			TokenTTL:    24 * time.Hour,
			RememberTTL: 14 * 24 * time.Hour,
		},
	}
}

func setup(t *testing.T, override ...func(*Options)) testApp {
	t.Helper()

	testutil.FreezeTime(t, testNow)
	db := testutil.SeededDB(t)
	conf := testConfig()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	memberSvc, err := member.NewService(inmemdb.NewMemberRepository(db), member.MustDefaultSchema())
	require.NoError(t, err)
	tokens, err := user.NewTokenIssuer(conf.SecretKey, conf.AppName)
	require.NoError(t, err)
	userSvc, err := user.NewService(
		inmemdb.NewUserRepository(db), user.LegacyHasher{}, tokens, memberSvc,
		user.Options{TokenTTL: conf.Auth.TokenTTL, RememberTTL: conf.Auth.RememberTTL},
	)
	require.NoError(t, err)
	historySvc, err := attendance.NewService(inmemdb.NewAttendanceRepository(db))
	require.NoError(t, err)

	opts := Options{
		Conf:       conf,
		Logger:     logsvc.NewRollbarLogger(zap.NewNop(), conf),
		AuthSvc:    userSvc,
		ProfileSvc: memberSvc,
		HistorySvc: historySvc,
		Validate:   Validator{Validate: validate, Translator: translator},
		Pinger:     db,
	}
	for _, fn := range override {
		fn(&opts)
	}
	srv, err := NewServer(opts)
	require.NoError(t, err)

	return testApp{srv: srv, db: db, conf: conf, tokens: tokens}
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (app testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.srv.ServeHTTP(rec, req)
	return rec
}

func (app testApp) runTests(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := app.do(method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}

// login returns the bearer token of a successful login.
func (app testApp) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := app.do(http.MethodPost, "/api/login", "", marchallObj(t, map[string]string{
		"username": username,
		"password": password,
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data user.LoginResult `json:"data"`
	}
	decode(t, rec, &resp)
	return resp.Data.Token
}

// issueToken stores a token carrying only the given abilities.
func (app testApp) issueToken(t *testing.T, personID int, abilities ...string) string {
	t.Helper()
	exp := testNow.Add(time.Hour)
	token, id, err := app.tokens.Issue(personID, abilities, testNow, exp)
	require.NoError(t, err)
	_, err = inmemdb.NewUserRepository(app.db).CreateToken(context.Background(), user.AccessToken{
		PersonID:  personID,
		Name:      "test",
		TokenHash: user.HashTokenID(id),
		Abilities: abilities,
		ExpiresAt: exp,
		CreatedAt: testNow,
	})
	require.NoError(t, err)
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func indentJSON(b []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "  "); err != nil {
		return string(b)
	}
	return out.String()
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(indentJSON(tt.wantData)),
			B:        difflib.SplitLines(indentJSON(rec.Body.Bytes())),
			FromFile: "want",
			ToFile:   "got",
			Context:  2,
		})
		t.Errorf("failed! data mismatch:\n%s", diff)
	}
}
