// Package testdb runs store tests against a real PostgreSQL database.
//
// Tests using it are skipped unless DATABASE_URL (or TASKS_TEST_DATABASE_URL)
// names a postgres:// database. The schema is migrated once per Open call and
// every test body runs inside a transaction that is rolled back afterwards, so
// tests may share one database and run in parallel.
//
//	db := testdb.Open(t)
//	testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
//		stores := testutils.NewTestStores(tx)
//		...
//	})
package testdb
