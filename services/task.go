package services

import (
	"context"

	"github.com/CrowderSoup/kanban/database"
)

// TaskService has the same shape as ColumnService, for the tasks collection.
type TaskService struct {
	client database.Client
}

func NewTaskService(client database.Client) *TaskService {
	return &TaskService{client: client}
}

// GetTasks returns a column's tasks in display order.
func (s *TaskService) GetTasks(ctx context.Context, columnID string) ([]database.Task, error) {
	tasks := []database.Task{}
	q := database.From("tasks").Eq("column_id", columnID).Order("sort_order", true)
	if err := s.client.Select(ctx, q, &tasks); err != nil {
		return nil, queryError("tasks", err)
	}
	return tasks, nil
}

// CreateTask inserts task. An unset priority is stored as medium.
func (s *TaskService) CreateTask(ctx context.Context, task database.NewTask) (*database.Task, error) {
	if task.Priority == "" {
		task.Priority = database.PriorityMedium
	}
	var created database.Task
	if err := s.client.Insert(ctx, "tasks", task, &created); err != nil {
		return nil, queryError("tasks", err)
	}
	return &created, nil
}
