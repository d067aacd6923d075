// Package mocks provides function-field mocks of the store, service and auth
// contracts for tests that need to force a specific outcome, usually a failure
// the real implementations cannot easily produce.
//
// Every method calls the matching Fn field when it is set and otherwise returns a
// neutral default (zero values or a not-found error):
//
//	tasks := &mocks.MockTaskStore{
//	    QueryFn: func(ctx context.Context, userID string, q domain.TaskQuery) ([]domain.Task, int, error) {
//	        return nil, 0, errors.New("connection reset")
//	    },
//	}
package mocks
