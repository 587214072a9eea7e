package database

import (
	"fmt"
	"strings"
	"time"
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority normalises a form value. Blank input yields PriorityMedium.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("unknown priority %q", s)
	}
}

// DefaultBoardColor is used when a board is created without a color.
const DefaultBoardColor = "bg-blue-500"

// BoardColors is the palette offered by the edit dialog.
var BoardColors = []string{
	"bg-blue-500",
	"bg-green-500",
	"bg-yellow-500",
	"bg-red-500",
	"bg-gray-500",
	"bg-indigo-500",
	"bg-pink-500",
	"bg-orange-500",
	"bg-teal-500",
	"bg-cyan-500",
	"bg-amber-500",
	"bg-lime-500",
}

func IsBoardColor(c string) bool {
	for _, bc := range BoardColors {
		if bc == c {
			return true
		}
	}
	return false
}

type Board struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewBoard is a board without its server-generated fields.
type NewBoard struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	UserID      string `json:"user_id"`
}

type Column struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	BoardID   string    `json:"board_id"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

type NewColumn struct {
	Title     string `json:"title"`
	BoardID   string `json:"board_id"`
	SortOrder int    `json:"sort_order"`
}

type Task struct {
	ID          string     `json:"id"`
	ColumnID    string     `json:"column_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Assignee    *string    `json:"assignee"`
	DueDate     *time.Time `json:"due_date"`
	Priority    Priority   `json:"priority"`
	SortOrder   int        `json:"sort_order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type NewTask struct {
	ColumnID    string     `json:"column_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Assignee    *string    `json:"assignee"`
	DueDate     *time.Time `json:"due_date"`
	Priority    Priority   `json:"priority"`
	SortOrder   int        `json:"sort_order"`
}

// User is the owner of boards, identified by the email used to log in.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type NewUser struct {
	Email string `json:"email"`
}
