package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

type TeamMemberRepository struct {
	db *sql.DB
}

func NewTeamMemberRepository(db *sql.DB) *TeamMemberRepository {
	return &TeamMemberRepository{db: db}
}

const memberColumns = `id, name, email, role, department, availability, password_hash, updated_at`

// List returns the roster ordered by id ascending. Workload tie-breaking
// depends on this order being stable.
func (r *TeamMemberRepository) List() ([]models.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members ORDER BY id ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying team members: %w", err)
	}
	defer rows.Close()

	var out []models.TeamMember
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *member)
	}
	return out, rows.Err()
}

func (r *TeamMemberRepository) GetByID(id int) (*models.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE id=$1`
	member, err := scanMember(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching team member: %w", err)
	}
	return member, nil
}

func (r *TeamMemberRepository) GetByEmail(email string) (*models.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE email=$1`
	member, err := scanMember(r.db.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching team member by email: %w", err)
	}
	return member, nil
}

func (r *TeamMemberRepository) UpdateAvailability(id int, availability models.Availability, updatedAt time.Time) error {
	res, err := r.db.Exec(
		`UPDATE team_members SET availability=$1, updated_at=$2 WHERE id=$3`,
		availability, updatedAt, id,
	)
	if err != nil {
		return fmt.Errorf("updating availability: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanMember(row rowScanner) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := row.Scan(
		&member.ID, &member.Name, &member.Email, &member.Role, &member.Department,
		&member.Availability, &member.PasswordHash, &member.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &member, nil
}
