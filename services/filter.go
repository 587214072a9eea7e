package services

import (
	"strings"
	"time"

	"github.com/CrowderSoup/kanban/database"
)

// TaskFilter narrows the tasks shown on a board. The zero value matches
// every task.
type TaskFilter struct {
	Priorities []database.Priority `json:"priorities,omitempty"`
	// Assignee matches as a case-insensitive substring.
	Assignee string `json:"assignee,omitempty"`
	// DueFrom and DueTo bound the due date by calendar day, inclusive.
	// Tasks without a due date never match a bounded filter.
	DueFrom *time.Time `json:"due_from,omitempty"`
	DueTo   *time.Time `json:"due_to,omitempty"`
}

// Active counts the criteria that are set.
func (f TaskFilter) Active() int {
	n := 0
	if len(f.Priorities) > 0 {
		n++
	}
	if strings.TrimSpace(f.Assignee) != "" {
		n++
	}
	if f.DueFrom != nil || f.DueTo != nil {
		n++
	}
	return n
}

func (f TaskFilter) Match(t database.Task) bool {
	if len(f.Priorities) > 0 {
		found := false
		for _, p := range f.Priorities {
			if t.Priority == p {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if a := strings.TrimSpace(f.Assignee); a != "" {
		if t.Assignee == nil || !strings.Contains(strings.ToLower(*t.Assignee), strings.ToLower(a)) {
			return false
		}
	}

	if f.DueFrom != nil || f.DueTo != nil {
		if t.DueDate == nil {
			return false
		}
		day := truncateDay(*t.DueDate)
		if f.DueFrom != nil && day.Before(truncateDay(*f.DueFrom)) {
			return false
		}
		if f.DueTo != nil && day.After(truncateDay(*f.DueTo)) {
			return false
		}
	}
	return true
}

// Apply returns copies of columns holding only matching tasks.
func (f TaskFilter) Apply(columns []ColumnWithTasks) []ColumnWithTasks {
	out := make([]ColumnWithTasks, 0, len(columns))
	for _, col := range columns {
		kept := make([]database.Task, 0, len(col.Tasks))
		for _, t := range col.Tasks {
			if f.Match(t) {
				kept = append(kept, t)
			}
		}
		out = append(out, ColumnWithTasks{Column: col.Column, Tasks: kept})
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
