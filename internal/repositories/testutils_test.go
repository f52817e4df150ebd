package repositories_test

import (
	_ "embed"
	"testing"

	"github.com/wallje/karina/internal/db"
)

//go:embed testdata/fixtures.sql
var testFixtures string

// newTestDB creates a new in-memory database with test fixtures.
func newTestDB(t *testing.T) *db.Database {
	var (
		dbs *db.Database
		err error
	)

	if dbs, err = db.NewDatabase(":memory:"); err != nil {
		t.Fatal(err)
	}

	if _, err = dbs.ReadWrite.Exec(testFixtures); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err = dbs.Close(); err != nil {
			t.Fatal(err)
		}
	})

	return dbs
}
