// Package service implements the application's use cases for projects, tags and
// tasks on top of the store contracts.
//
// Every operation is scoped to the calling user's id: rows owned by someone else
// behave exactly like rows that do not exist. Mutations run in a single
// transaction and return the entity as re-read after commit.
//
// Services return domain errors (domain.ErrNotFound, domain.ErrDuplicate,
// domain.ErrValidation) for expected conditions and wrap everything else in a
// *ServiceError naming the failed operation. They never decide HTTP status codes.
package service
