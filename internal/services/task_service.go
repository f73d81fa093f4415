package services

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

type TaskStore interface {
	Create(task *models.Task) (int, error)
	Update(task *models.Task) error
	GetByID(id int) (*models.Task, error)
	List(limit, offset int) ([]models.Task, error)
	Delete(id int) error
}

type TaskService struct {
	repo     TaskStore
	assigner *AssignmentService
	log      *zap.Logger
}

func NewTaskService(repo TaskStore, assigner *AssignmentService, log *zap.Logger) *TaskService {
	return &TaskService{repo: repo, assigner: assigner, log: log}
}

func (s *TaskService) Create(task *models.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return &ValidationError{Problems: []string{"Title is required"}}
	}

	now := time.Now()
	if task.Status == "" {
		task.Status = models.TaskStatusNew
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityNormal
	}
	task.CreatedAt = now
	task.UpdatedAt = now

	if task.AssignedTo == nil {
		if decision := s.assigner.AutoAssign(models.EntityTasks, task.FieldMap()); decision != nil {
			assignee := decision.AssignedTo
			task.AssignedTo = &assignee
		}
	}

	id, err := s.repo.Create(task)
	if err != nil {
		return err
	}
	task.ID = id
	return nil
}

func (s *TaskService) Update(id int, task *models.Task) error {
	current, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrTaskNotFound
	}
	task.ID = id
	task.CreatedAt = current.CreatedAt
	task.UpdatedAt = time.Now()
	return s.repo.Update(task)
}

func (s *TaskService) Assign(id, assigneeID int) (*models.Task, error) {
	task, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	task.AssignedTo = &assigneeID
	task.UpdatedAt = time.Now()
	if err := s.repo.Update(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) GetByID(id int) (*models.Task, error) {
	task, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) List(limit, offset int) []models.Task {
	tasks, err := s.repo.List(limit, offset)
	if err != nil {
		s.log.Error("listing tasks failed", zap.Error(err))
		return []models.Task{}
	}
	return tasks
}

func (s *TaskService) Delete(id int) error {
	return s.repo.Delete(id)
}
