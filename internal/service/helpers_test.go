package service_test

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/testutils"
	"github.com/stretchr/testify/require"
)

// testClock is a settable clock shared by the services under test.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type serviceFixture struct {
	db       *sqlx.DB
	clock    *testClock
	projects service.ProjectService
	tags     service.TagService
	tasks    service.TaskService
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()

	db := testutils.NewTestDB(t)
	stores := testutils.NewTestStores(db)
	clock := &testClock{now: testutils.FixedTime}
	logger := testutils.DiscardLogger()

	projects, err := service.NewProjectService(db, stores.Projects, stores.Tasks, logger, service.WithClock(clock.Now))
	require.NoError(t, err)
	tags, err := service.NewTagService(db, stores.Tags, logger, service.WithClock(clock.Now))
	require.NoError(t, err)
	tasks, err := service.NewTaskService(db, stores.Tasks, stores.Projects, stores.Tags, logger, service.WithClock(clock.Now))
	require.NoError(t, err)

	return serviceFixture{db: db, clock: clock, projects: projects, tags: tags, tasks: tasks}
}
