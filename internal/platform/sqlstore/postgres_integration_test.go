package sqlstore_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/phrazzld/tasks-api/internal/testdb"
	"github.com/phrazzld/tasks-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_TaskQuery(t *testing.T) {
	db := testdb.Open(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
		f := seedQueryFixture(t, tx)

		tests := []struct {
			name   string
			filter domain.TaskFilter
			want   []string
		}{
			{name: "inbox", filter: domain.TaskFilter{Project: domain.Null[uuid.UUID]()}, want: []string{"Write notes", "Buy milk"}},
			{name: "search", filter: domain.TaskFilter{Search: "MILK"}, want: []string{"Write notes", "Buy milk"}},
			{name: "search treats underscore literally", filter: domain.TaskFilter{Search: "y_t"}, want: []string{"pay_taxes"}},
			{name: "every tag", filter: domain.TaskFilter{TagIDs: []uuid.UUID{f.red.ID, f.blue.ID}}, want: []string{"Pay 100% rent"}},
		}
		for _, tc := range tests {
			titles, total := runQuery(t, tx, f.userID, domain.TaskQuery{Filter: tc.filter})
			assert.Equal(t, tc.want, titles, tc.name)
			assert.Equal(t, len(tc.want), total, tc.name)
		}

		titles, total := runQuery(t, tx, f.userID, domain.TaskQuery{
			Sort: domain.TaskSort{Field: domain.SortByPriority, Order: domain.SortAsc},
			Page: domain.PageRequest{Offset: 1, Limit: 2},
		})
		assert.Equal(t, []string{"pay_taxes", "Write notes"}, titles)
		assert.Equal(t, 4, total)
	})
}

func TestPostgres_ProjectNameUniqueIgnoresCase(t *testing.T) {
	db := testdb.Open(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
		stores := testutils.NewTestStores(tx)
		user := testutils.MustInsertUser(t, tx, "pg-owner")
		testutils.MustInsertProject(t, tx, user.ID, "Garden")

		found, err := stores.Projects.FindByName(context.Background(), user.ID, "GARDEN")
		require.NoError(t, err)
		assert.Equal(t, "Garden", found.Name)

		// A unique violation aborts the transaction, so this check comes last.
		dup, err := domain.NewProject(user.ID, domain.ProjectInput{Name: "garden"}, testutils.FixedTime)
		require.NoError(t, err)
		err = stores.Projects.Create(context.Background(), dup)
		assert.ErrorIs(t, err, store.ErrProjectNameExists)
	})
}
