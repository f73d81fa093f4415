package repositories

import (
	"database/sql"
	"fmt"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `id, title, company, contact_name, email, phone, value, budget, timeline,
	source, stage, notes, assigned_to, assignment_history, qualification, score, score_history,
	tags, created_at, updated_at`

func (r *LeadRepository) Create(lead *models.Lead) (int, error) {
	history, qualification, scoreHistory, err := leadDocs(lead)
	if err != nil {
		return 0, err
	}
	const query = `
		INSERT INTO leads (title, company, contact_name, email, phone, value, budget, timeline,
			source, stage, notes, assigned_to, assignment_history, qualification, score, score_history,
			tags, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING id
	`
	var id int
	err = r.db.QueryRow(query,
		lead.Title, lead.Company, lead.ContactName, lead.Email, lead.Phone,
		lead.Value, lead.Budget, lead.Timeline, lead.Source, lead.Stage, lead.Notes,
		lead.AssignedTo, history, qualification, lead.Score, scoreHistory,
		joinTags(lead.Tags), lead.CreatedAt, lead.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating lead: %w", err)
	}
	return id, nil
}

func (r *LeadRepository) Update(lead *models.Lead) error {
	history, qualification, scoreHistory, err := leadDocs(lead)
	if err != nil {
		return err
	}
	const query = `
		UPDATE leads
		SET title=$1, company=$2, contact_name=$3, email=$4, phone=$5, value=$6, budget=$7,
			timeline=$8, source=$9, stage=$10, notes=$11, assigned_to=$12, assignment_history=$13,
			qualification=$14, score=$15, score_history=$16, tags=$17, updated_at=$18
		WHERE id=$19
	`
	if _, err := r.db.Exec(query,
		lead.Title, lead.Company, lead.ContactName, lead.Email, lead.Phone,
		lead.Value, lead.Budget, lead.Timeline, lead.Source, lead.Stage, lead.Notes,
		lead.AssignedTo, history, qualification, lead.Score, scoreHistory,
		joinTags(lead.Tags), lead.UpdatedAt, lead.ID,
	); err != nil {
		return fmt.Errorf("updating lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) GetByID(id int) (*models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id=$1`
	lead, err := scanLead(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching lead: %w", err)
	}
	return lead, nil
}

func (r *LeadRepository) List(limit, offset int) ([]models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}
	return r.queryLeads(query, args...)
}

func (r *LeadRepository) ListByAssignee(assigneeID int) ([]models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE assigned_to=$1 ORDER BY created_at DESC`
	return r.queryLeads(query, assigneeID)
}

func (r *LeadRepository) Delete(id int) error {
	if _, err := r.db.Exec(`DELETE FROM leads WHERE id=$1`, id); err != nil {
		return fmt.Errorf("deleting lead: %w", err)
	}
	return nil
}

// CountActiveByAssignee feeds workload snapshots; converted and lost leads
// no longer count against a member.
func (r *LeadRepository) CountActiveByAssignee(memberID int) (int, error) {
	const query = `SELECT COUNT(*) FROM leads WHERE assigned_to=$1 AND stage NOT IN ('converted','lost')`
	var count int
	err := r.db.QueryRow(query, memberID).Scan(&count)
	return count, err
}

func (r *LeadRepository) queryLeads(query string, args ...any) ([]models.Lead, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying leads: %w", err)
	}
	defer rows.Close()

	var out []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *lead)
	}
	return out, rows.Err()
}

func leadDocs(lead *models.Lead) (history, qualification, scoreHistory string, err error) {
	if history, err = marshalDoc(lead.AssignmentHistory); err != nil {
		return
	}
	if qualification, err = marshalDoc(lead.Qualification); err != nil {
		return
	}
	scoreHistory, err = marshalDoc(lead.ScoreHistory)
	return
}

func scanLead(row rowScanner) (*models.Lead, error) {
	var lead models.Lead
	var value, budget sql.NullFloat64
	var assignedTo sql.NullInt64
	var history, qualification, scoreHistory, tags string
	if err := row.Scan(
		&lead.ID, &lead.Title, &lead.Company, &lead.ContactName, &lead.Email, &lead.Phone,
		&value, &budget, &lead.Timeline, &lead.Source, &lead.Stage, &lead.Notes,
		&assignedTo, &history, &qualification, &lead.Score, &scoreHistory,
		&tags, &lead.CreatedAt, &lead.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if value.Valid {
		lead.Value = &value.Float64
	}
	if budget.Valid {
		lead.Budget = &budget.Float64
	}
	if assignedTo.Valid {
		v := int(assignedTo.Int64)
		lead.AssignedTo = &v
	}
	if err := unmarshalDoc(history, &lead.AssignmentHistory); err != nil {
		return nil, err
	}
	if err := unmarshalDoc(qualification, &lead.Qualification); err != nil {
		return nil, err
	}
	if err := unmarshalDoc(scoreHistory, &lead.ScoreHistory); err != nil {
		return nil, err
	}
	lead.Tags = splitTags(tags)
	return &lead, nil
}
