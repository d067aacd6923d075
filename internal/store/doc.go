// Package store declares the persistence contracts for users, projects, tags and
// tasks, plus the transaction helper the services use to group writes.
//
// Every method that reads or writes a user-owned row takes the owning user's
// ID and never matches rows belonging to anyone else. Implementations report
// failures with the sentinels in errors.go; anything else is a StoreError.
package store
