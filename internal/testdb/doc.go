//go:build integration

// Package testdb starts disposable PostgreSQL databases for integration tests.
//
// Start returns a migrated database. It reuses the database named by
// ANNOTATE_TEST_DATABASE_URL when that variable is set and otherwise runs a
// throwaway container with testcontainers. WithTx runs a test body inside a
// transaction that is always rolled back, so tests sharing one database do not
// see each other's rows.
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.Start(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        annotations := postgres.NewPostgresAnnotationStore(tx, nil)
//	        // ...
//	    })
//	}
package testdb
