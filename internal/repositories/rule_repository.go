package repositories

import (
	"database/sql"
	"fmt"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

type RuleRepository struct {
	db *sql.DB
}

func NewRuleRepository(db *sql.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

func (r *RuleRepository) Create(rule *models.AssignmentRule) error {
	criteria, err := marshalDoc(rule.Criteria)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO assignment_rules (name, entity, is_active, priority, criteria, fallback_strategy, assign_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var id int
	err = r.db.QueryRow(query,
		rule.Name, rule.Entity, rule.IsActive, rule.Priority,
		criteria, rule.FallbackStrategy, rule.AssignTo,
		rule.CreatedAt, rule.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("creating assignment rule: %w", err)
	}
	rule.ID = id
	return nil
}

func (r *RuleRepository) Update(rule *models.AssignmentRule) error {
	criteria, err := marshalDoc(rule.Criteria)
	if err != nil {
		return err
	}
	const query = `
		UPDATE assignment_rules
		SET name=$1, entity=$2, is_active=$3, priority=$4, criteria=$5, fallback_strategy=$6, assign_to=$7, updated_at=$8
		WHERE id=$9
	`
	if _, err := r.db.Exec(query,
		rule.Name, rule.Entity, rule.IsActive, rule.Priority,
		criteria, rule.FallbackStrategy, rule.AssignTo,
		rule.UpdatedAt, rule.ID,
	); err != nil {
		return fmt.Errorf("updating assignment rule: %w", err)
	}
	return nil
}

func (r *RuleRepository) GetByID(id int) (*models.AssignmentRule, error) {
	const query = `
		SELECT id, name, entity, is_active, priority, criteria, fallback_strategy, assign_to, created_at, updated_at
		FROM assignment_rules
		WHERE id=$1
	`
	rule, err := scanRule(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching assignment rule: %w", err)
	}
	return rule, nil
}

func (r *RuleRepository) List() ([]models.AssignmentRule, error) {
	const query = `
		SELECT id, name, entity, is_active, priority, criteria, fallback_strategy, assign_to, created_at, updated_at
		FROM assignment_rules
		ORDER BY entity, priority, id
	`
	return r.queryRules(query)
}

// ActiveRulesByEntity returns active rules ordered by priority ascending,
// ties by id ascending so the original insertion order is stable.
func (r *RuleRepository) ActiveRulesByEntity(entity models.EntityType) ([]models.AssignmentRule, error) {
	const query = `
		SELECT id, name, entity, is_active, priority, criteria, fallback_strategy, assign_to, created_at, updated_at
		FROM assignment_rules
		WHERE entity=$1 AND is_active=TRUE
		ORDER BY priority ASC, id ASC
	`
	return r.queryRules(query, entity)
}

func (r *RuleRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM assignment_rules WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("deleting assignment rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *RuleRepository) queryRules(query string, args ...any) ([]models.AssignmentRule, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying assignment rules: %w", err)
	}
	defer rows.Close()

	var out []models.AssignmentRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rule)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*models.AssignmentRule, error) {
	var rule models.AssignmentRule
	var criteria string
	var assignTo sql.NullInt64
	if err := row.Scan(
		&rule.ID, &rule.Name, &rule.Entity, &rule.IsActive, &rule.Priority,
		&criteria, &rule.FallbackStrategy, &assignTo,
		&rule.CreatedAt, &rule.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := unmarshalDoc(criteria, &rule.Criteria); err != nil {
		return nil, err
	}
	if assignTo.Valid {
		v := int(assignTo.Int64)
		rule.AssignTo = &v
	}
	return &rule, nil
}
