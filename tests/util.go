package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vinckarunia/raha-member-app/core"
	"github.com/vinckarunia/raha-member-app/core/user"
	"github.com/vinckarunia/raha-member-app/storage/database"
	inmemdb "github.com/vinckarunia/raha-member-app/storage/database/inmem"
)

// FreezeTime pins core.NowFunc to now until the test ends.
func FreezeTime(t *testing.T, now time.Time) {
	t.Helper()
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = time.Now })
}

// SeededDB returns an in-memory store filled with the demo congregation.
func SeededDB(t *testing.T) *inmemdb.DB {
	t.Helper()
	db := inmemdb.Open()
	inmemdb.Seed(db)
	return db
}

func CreateCredential(t *testing.T, db *inmemdb.DB, personID int, uname, pwd string, isAdmin bool) user.Credential {
	hash, err := user.LegacyHasher{}.Hash(pwd, personID)
	if err != nil {
		t.Fatalf("createCredential() failed: %v", err)
	}
	cred := user.Credential{
		PersonID:     personID,
		Username:     uname,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	}
	db.AddCredential(cred)
	return cred
}

// PostgresDB connects to the TEST database and migrates it.
// The test is skipped unless TEST_DATABASE_ENGINE=postgres.
func PostgresDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if os.Getenv("TEST_DATABASE_ENGINE") != "postgres" {
		t.Skip("TEST_DATABASE_ENGINE is not postgres")
	}
	t.Setenv("ENV", "TEST")
	conf := core.NewConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := database.Open(ctx, conf)
	if err != nil {
		t.Fatalf("postgresDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(ctx, db.DB); err != nil {
		t.Fatalf("postgresDB() failed: %v", err)
	}
	return db
}

// Exec runs raw statements, failing the test on the first error.
func Exec(t *testing.T, db *sqlx.DB, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec(%q) failed: %v", s, err)
		}
	}
}
