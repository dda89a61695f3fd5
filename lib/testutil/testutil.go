package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	devenv "ovxassist-backend/dev/env"
	"ovxassist-backend/lib/sqliteutil"
	"ovxassist-backend/lib/telemetry"
)

type ServiceParams struct {
	Name string
	// schema applied to a fresh db, empty leaves the db schemaless
	DbSchema string
	// defaults to `:memory:`
	DbPath string
}

type ServiceResult struct {
	DB *sql.DB
}

// SetupService stands up telemetry and a sqlite handle for a package
// test. The returned cleanup tears telemetry back down.
func SetupService(t testing.TB, params ServiceParams) (ServiceResult, func()) {
	cleanup := telemetry.SetupForTesting(fmt.Sprintf("test:%s", params.Name))

	dbpath := params.DbPath
	switch dbpath {
	case "", ":memory:":
		dbpath = ":memory:"
	default:
		resolved, err := devenv.ResolvePath(dbpath)
		if err != nil {
			t.Fatal(err)
		}
		dbpath = resolved
	}

	db, err := sqliteutil.OpenDB(params.DbSchema, dbpath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	return ServiceResult{DB: db}, cleanup
}
