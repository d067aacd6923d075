package sqlstore

import (
	"strings"

	"github.com/phrazzld/tasks-api/internal/domain"
)

// whereClause accumulates ANDed conditions written with '?' placeholders.
type whereClause struct {
	conds []string
	args  []any
}

func (w *whereClause) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *whereClause) String() string {
	return strings.Join(w.conds, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a lower-cased substring pattern in which the LIKE
// metacharacters of term match literally (with ESCAPE '\').
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// buildTaskWhere translates a filter into the WHERE clause of a task listing.
// Every predicate is optional; the owner condition is always present. Each
// requested tag contributes its own membership subquery so a task must carry all of them.
func buildTaskWhere(userID string, f domain.TaskFilter) *whereClause {
	w := &whereClause{}
	w.add("t.user_id = ?", userID)

	if f.IsCompleted != nil {
		w.add("t.is_completed = ?", *f.IsCompleted)
	}
	if f.Priority != nil {
		w.add("t.priority = ?", int(*f.Priority))
	}
	if f.Project.Set {
		if f.Project.Null {
			w.add("t.project_id IS NULL")
		} else {
			w.add("t.project_id = ?", f.Project.Value)
		}
	}
	if f.DeadlineAfter != nil {
		w.add("t.deadline >= ?", f.DeadlineAfter.UTC())
	}
	if f.DeadlineBefore != nil {
		w.add("t.deadline <= ?", f.DeadlineBefore.UTC())
	}
	if strings.TrimSpace(f.Search) != "" {
		pattern := likePattern(f.Search)
		w.add(`(LOWER(t.title) LIKE ? ESCAPE '\' OR LOWER(COALESCE(t.description, '')) LIKE ? ESCAPE '\')`,
			pattern, pattern)
	}
	for _, tagID := range f.TagIDs {
		w.add("t.id IN (SELECT task_id FROM task_tags WHERE tag_id = ?)", tagID)
	}
	return w
}

// taskOrderBy returns a whitelisted ORDER BY expression. Tasks without a deadline
// sort last in both directions when ordering by deadline.
func taskOrderBy(s domain.TaskSort) string {
	dir := "DESC"
	if s.Order == domain.SortAsc {
		dir = "ASC"
	}
	switch s.Field {
	case domain.SortByDeadline:
		return "CASE WHEN t.deadline IS NULL THEN 1 ELSE 0 END, t.deadline " + dir
	case domain.SortByPriority:
		return "t.priority " + dir
	case domain.SortByTitle:
		return "LOWER(t.title) " + dir + ", t.title " + dir
	default:
		return "t.created_at " + dir
	}
}
