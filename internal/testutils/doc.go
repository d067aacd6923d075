// Package testutils provides helpers shared by the package tests: a migrated
// in-memory SQLite database, fixture inserts, signed test tokens with a matching
// key set, and a log handler that captures records.
//
// Every call to NewTestDB returns an independent database, so tests using it can
// run in parallel without cleanup:
//
//	func TestSomething(t *testing.T) {
//	    t.Parallel()
//	    db := testutils.NewTestDB(t)
//	    user := testutils.MustInsertUser(t, db, "user-1")
//	    project := testutils.MustInsertProject(t, db, user.ID, "Work")
//	    ...
//	}
package testutils
