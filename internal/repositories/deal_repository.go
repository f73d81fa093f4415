package repositories

import (
	"database/sql"
	"fmt"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

type DealRepository struct {
	db *sql.DB
}

func NewDealRepository(db *sql.DB) *DealRepository {
	return &DealRepository{db: db}
}

const dealColumns = `id, title, amount, stage, probability, close_date, notes, deal_owner,
	assignment_history, stage_history, contact_id, tags, created_at, updated_at`

func (r *DealRepository) Create(deal *models.Deal) (int, error) {
	history, stageHistory, err := dealDocs(deal)
	if err != nil {
		return 0, err
	}
	const query = `
		INSERT INTO deals (title, amount, stage, probability, close_date, notes, deal_owner,
			assignment_history, stage_history, contact_id, tags, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id
	`
	var id int
	err = r.db.QueryRow(query,
		deal.Title, deal.Amount, deal.Stage, deal.Probability, deal.CloseDate, deal.Notes,
		deal.DealOwner, history, stageHistory, deal.ContactID,
		joinTags(deal.Tags), deal.CreatedAt, deal.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating deal: %w", err)
	}
	return id, nil
}

func (r *DealRepository) Update(deal *models.Deal) error {
	history, stageHistory, err := dealDocs(deal)
	if err != nil {
		return err
	}
	const query = `
		UPDATE deals
		SET title=$1, amount=$2, stage=$3, probability=$4, close_date=$5, notes=$6, deal_owner=$7,
			assignment_history=$8, stage_history=$9, contact_id=$10, tags=$11, updated_at=$12
		WHERE id=$13
	`
	if _, err := r.db.Exec(query,
		deal.Title, deal.Amount, deal.Stage, deal.Probability, deal.CloseDate, deal.Notes,
		deal.DealOwner, history, stageHistory, deal.ContactID,
		joinTags(deal.Tags), deal.UpdatedAt, deal.ID,
	); err != nil {
		return fmt.Errorf("updating deal: %w", err)
	}
	return nil
}

func (r *DealRepository) GetByID(id int) (*models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id=$1`
	deal, err := scanDeal(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching deal: %w", err)
	}
	return deal, nil
}

func (r *DealRepository) List(limit, offset int) ([]models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}
	return r.queryDeals(query, args...)
}

func (r *DealRepository) ListByAssignee(assigneeID int) ([]models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE deal_owner=$1 ORDER BY created_at DESC`
	return r.queryDeals(query, assigneeID)
}

func (r *DealRepository) ListByStage(stage models.DealStage) ([]models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE stage=$1 ORDER BY created_at DESC`
	return r.queryDeals(query, stage)
}

func (r *DealRepository) Delete(id int) error {
	if _, err := r.db.Exec(`DELETE FROM deals WHERE id=$1`, id); err != nil {
		return fmt.Errorf("deleting deal: %w", err)
	}
	return nil
}

// CountActiveByAssignee feeds workload snapshots; closed deals no longer
// count against a member.
func (r *DealRepository) CountActiveByAssignee(memberID int) (int, error) {
	const query = `SELECT COUNT(*) FROM deals WHERE deal_owner=$1 AND stage NOT IN ('closed-won','closed-lost')`
	var count int
	err := r.db.QueryRow(query, memberID).Scan(&count)
	return count, err
}

func (r *DealRepository) queryDeals(query string, args ...any) ([]models.Deal, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying deals: %w", err)
	}
	defer rows.Close()

	var out []models.Deal
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *deal)
	}
	return out, rows.Err()
}

func dealDocs(deal *models.Deal) (history, stageHistory string, err error) {
	if history, err = marshalDoc(deal.AssignmentHistory); err != nil {
		return
	}
	stageHistory, err = marshalDoc(deal.StageHistory)
	return
}

func scanDeal(row rowScanner) (*models.Deal, error) {
	var deal models.Deal
	var owner, contactID sql.NullInt64
	var history, stageHistory, tags string
	if err := row.Scan(
		&deal.ID, &deal.Title, &deal.Amount, &deal.Stage, &deal.Probability,
		&deal.CloseDate, &deal.Notes, &owner, &history, &stageHistory,
		&contactID, &tags, &deal.CreatedAt, &deal.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if owner.Valid {
		v := int(owner.Int64)
		deal.DealOwner = &v
	}
	if contactID.Valid {
		v := int(contactID.Int64)
		deal.ContactID = &v
	}
	if err := unmarshalDoc(history, &deal.AssignmentHistory); err != nil {
		return nil, err
	}
	if err := unmarshalDoc(stageHistory, &deal.StageHistory); err != nil {
		return nil, err
	}
	deal.Tags = splitTags(tags)
	return &deal, nil
}
