package repositories

import (
	"database/sql"
	"fmt"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, title, description, entity_type, entity_id, assigned_to, priority, status, due_date, created_at, updated_at`

func (r *TaskRepository) Create(task *models.Task) (int, error) {
	const query = `
		INSERT INTO tasks (title, description, entity_type, entity_id, assigned_to, priority, status, due_date, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id
	`
	var id int
	err := r.db.QueryRow(query,
		task.Title, task.Description, task.EntityType, task.EntityID, task.AssignedTo,
		task.Priority, task.Status, task.DueDate,
		task.CreatedAt, task.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating task: %w", err)
	}
	return id, nil
}

func (r *TaskRepository) Update(task *models.Task) error {
	const query = `
		UPDATE tasks
		SET title=$1, description=$2, entity_type=$3, entity_id=$4, assigned_to=$5, priority=$6, status=$7, due_date=$8, updated_at=$9
		WHERE id=$10
	`
	if _, err := r.db.Exec(query,
		task.Title, task.Description, task.EntityType, task.EntityID, task.AssignedTo,
		task.Priority, task.Status, task.DueDate,
		task.UpdatedAt, task.ID,
	); err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(id int) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id=$1`
	task, err := scanTask(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching task: %w", err)
	}
	return task, nil
}

func (r *TaskRepository) List(limit, offset int) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *task)
	}
	return out, rows.Err()
}

func (r *TaskRepository) Delete(id int) error {
	if _, err := r.db.Exec(`DELETE FROM tasks WHERE id=$1`, id); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return nil
}

func (r *TaskRepository) CountActiveByAssignee(memberID int) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE assigned_to=$1 AND status IN ('new','in_progress')`,
		memberID,
	).Scan(&count)
	return count, err
}

func scanTask(row rowScanner) (*models.Task, error) {
	var task models.Task
	var entityID, assignedTo sql.NullInt64
	var dueDate sql.NullTime
	if err := row.Scan(
		&task.ID, &task.Title, &task.Description, &task.EntityType, &entityID,
		&assignedTo, &task.Priority, &task.Status, &dueDate,
		&task.CreatedAt, &task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if entityID.Valid {
		v := int(entityID.Int64)
		task.EntityID = &v
	}
	if assignedTo.Valid {
		v := int(assignedTo.Int64)
		task.AssignedTo = &v
	}
	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}
	return &task, nil
}
