package repositories

import (
	"database/sql"
	"fmt"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

const contactColumns = `id, name, email, phone, company, position, assigned_to, assignment_history, tags, created_at, updated_at`

func (r *ContactRepository) Create(contact *models.Contact) (int, error) {
	history, err := marshalDoc(contact.AssignmentHistory)
	if err != nil {
		return 0, err
	}
	const query = `
		INSERT INTO contacts (name, email, phone, company, position, assigned_to, assignment_history, tags, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id
	`
	var id int
	err = r.db.QueryRow(query,
		contact.Name, contact.Email, contact.Phone, contact.Company, contact.Position,
		contact.AssignedTo, history, joinTags(contact.Tags),
		contact.CreatedAt, contact.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating contact: %w", err)
	}
	return id, nil
}

func (r *ContactRepository) Update(contact *models.Contact) error {
	history, err := marshalDoc(contact.AssignmentHistory)
	if err != nil {
		return err
	}
	const query = `
		UPDATE contacts
		SET name=$1, email=$2, phone=$3, company=$4, position=$5, assigned_to=$6, assignment_history=$7, tags=$8, updated_at=$9
		WHERE id=$10
	`
	if _, err := r.db.Exec(query,
		contact.Name, contact.Email, contact.Phone, contact.Company, contact.Position,
		contact.AssignedTo, history, joinTags(contact.Tags),
		contact.UpdatedAt, contact.ID,
	); err != nil {
		return fmt.Errorf("updating contact: %w", err)
	}
	return nil
}

func (r *ContactRepository) GetByID(id int) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id=$1`
	contact, err := scanContact(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching contact: %w", err)
	}
	return contact, nil
}

func (r *ContactRepository) List(limit, offset int) ([]models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying contacts: %w", err)
	}
	defer rows.Close()

	var out []models.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *contact)
	}
	return out, rows.Err()
}

func (r *ContactRepository) Delete(id int) error {
	if _, err := r.db.Exec(`DELETE FROM contacts WHERE id=$1`, id); err != nil {
		return fmt.Errorf("deleting contact: %w", err)
	}
	return nil
}

func (r *ContactRepository) CountActiveByAssignee(memberID int) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM contacts WHERE assigned_to=$1`, memberID).Scan(&count)
	return count, err
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var contact models.Contact
	var assignedTo sql.NullInt64
	var history, tags string
	if err := row.Scan(
		&contact.ID, &contact.Name, &contact.Email, &contact.Phone, &contact.Company,
		&contact.Position, &assignedTo, &history, &tags,
		&contact.CreatedAt, &contact.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if assignedTo.Valid {
		v := int(assignedTo.Int64)
		contact.AssignedTo = &v
	}
	if err := unmarshalDoc(history, &contact.AssignmentHistory); err != nil {
		return nil, err
	}
	contact.Tags = splitTags(tags)
	return &contact, nil
}
