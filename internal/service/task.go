package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adilzhan/taskgate/internal/domain"
	"github.com/adilzhan/taskgate/internal/repo"
)

// Tasks is the task workflow. Every operation is scoped to the
// creator: a task someone else owns looks exactly like a missing one.
type Tasks struct {
	Store *repo.Store
}

func NewTasks(store *repo.Store) *Tasks {
	return &Tasks{Store: store}
}

func (t *Tasks) Create(ctx context.Context, owner primitive.ObjectID, title, description string) (*domain.Task, error) {
	task := &domain.Task{
		Title:       title,
		Description: description,
		Status:      domain.StatusOpen,
		CreatedBy:   owner,
		AssignedTo:  owner,
	}
	if err := t.Store.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

type TaskList struct {
	Data  []domain.Task `json:"data"`
	Total int64         `json:"total"`
	Pages int64         `json:"pages"`
	Page  int           `json:"page"`
}

func (t *Tasks) List(ctx context.Context, owner primitive.ObjectID, p repo.TaskListParams) (*TaskList, error) {
	if p.Limit <= 0 {
		p.Limit = 10
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	tasks, total, err := t.Store.ListTasks(ctx, owner, p)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	pages := (total + int64(p.Limit) - 1) / int64(p.Limit)
	return &TaskList{Data: tasks, Total: total, Pages: pages, Page: p.Page}, nil
}

func (t *Tasks) Get(ctx context.Context, id, owner primitive.ObjectID) (*domain.Task, error) {
	task, err := t.Store.FindTaskByOwner(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (t *Tasks) Update(ctx context.Context, id, owner primitive.ObjectID, title, description string, status domain.TaskStatus) (*domain.Task, error) {
	task, err := t.Store.UpdateTaskByOwner(ctx, id, owner, title, description, status)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (t *Tasks) Delete(ctx context.Context, id, owner primitive.ObjectID) (*domain.Task, error) {
	task, err := t.Store.DeleteTaskByOwner(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}
