package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

// DealStore is the record-store side of the deals collection.
type DealStore interface {
	Create(deal *models.Deal) (int, error)
	Update(deal *models.Deal) error
	GetByID(id int) (*models.Deal, error)
	List(limit, offset int) ([]models.Deal, error)
	ListByAssignee(assigneeID int) ([]models.Deal, error)
	ListByStage(stage models.DealStage) ([]models.Deal, error)
	Delete(id int) error
}

type DealService struct {
	repo     DealStore
	assigner *AssignmentService
	log      *zap.Logger
}

func NewDealService(repo DealStore, assigner *AssignmentService, log *zap.Logger) *DealService {
	return &DealService{repo: repo, assigner: assigner, log: log}
}

// Create opens the stage history with the initial stage and auto-assigns an
// owner when none was supplied.
func (s *DealService) Create(deal *models.Deal, actorID int) error {
	now := time.Now()
	if deal.Stage == "" {
		deal.Stage = models.DealStageNew
	}
	if !deal.Stage.Valid() {
		return &ValidationError{Problems: []string{"Unknown pipeline stage"}}
	}
	if deal.Probability == 0 {
		deal.Probability = 25
	}
	deal.CreatedAt = now
	deal.UpdatedAt = now
	deal.StageHistory = openStageHistory(string(deal.Stage), now)

	deal.AssignmentHistory = nil
	if deal.DealOwner == nil {
		if decision := s.assigner.AutoAssign(models.EntityDeals, deal.FieldMap()); decision != nil {
			owner := decision.AssignedTo
			deal.DealOwner = &owner
			deal.AssignmentHistory = append(deal.AssignmentHistory,
				NewAssignmentHistoryEntry(decision, actorID, now))
		}
	} else {
		deal.AssignmentHistory = append(deal.AssignmentHistory, models.AssignmentHistoryEntry{
			ID:         newHistoryID(),
			AssignedTo: *deal.DealOwner,
			AssignedBy: actorID,
			AssignedAt: now,
			Status:     "active",
			Reason:     "Assigned at creation",
		})
	}

	id, err := s.repo.Create(deal)
	if err != nil {
		return err
	}
	deal.ID = id
	return nil
}

// Update is a generic field update. The stage and both history
// sub-documents are owned by the server: the stored values win, and only
// UpdateStage may advance the stage history.
func (s *DealService) Update(id int, deal *models.Deal, actorID int) error {
	current, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrDealNotFound
	}

	now := time.Now()
	deal.ID = id
	deal.CreatedAt = current.CreatedAt
	deal.UpdatedAt = now
	deal.Stage = current.Stage
	deal.StageHistory = current.StageHistory
	deal.AssignmentHistory = current.AssignmentHistory
	if changedOwner(current.DealOwner, deal.DealOwner) {
		deal.AssignmentHistory = append(deal.AssignmentHistory, models.AssignmentHistoryEntry{
			ID:         newHistoryID(),
			AssignedTo: *deal.DealOwner,
			AssignedBy: actorID,
			AssignedAt: now,
			Status:     "active",
			Reason:     "Reassigned",
		})
	}

	return s.repo.Update(deal)
}

// UpdateStage is the only operation that advances the stage history: it
// closes the open entry with its duration and opens one for the new stage.
func (s *DealService) UpdateStage(id int, newStage models.DealStage) (*models.Deal, error) {
	if !newStage.Valid() {
		return nil, &ValidationError{Problems: []string{"Unknown pipeline stage"}}
	}

	deal, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, ErrDealNotFound
	}
	if deal.Stage == newStage {
		return deal, nil
	}

	now := time.Now()
	deal.StageHistory = transitionStage(deal.StageHistory, string(newStage), now)
	deal.Stage = newStage
	deal.UpdatedAt = now
	if err := s.repo.Update(deal); err != nil {
		return nil, err
	}
	return deal, nil
}

// BulkUpdateStage moves many deals to one stage; items settle independently.
func (s *DealService) BulkUpdateStage(ids []int, stage models.DealStage) models.BulkResult {
	result := models.BulkResult{Total: len(ids)}
	for _, id := range ids {
		if _, err := s.UpdateStage(id, stage); err != nil {
			result.Fail(id, err)
			continue
		}
		result.Succeeded++
	}
	return result
}

func (s *DealService) Assign(id, assigneeID, actorID int) (*models.Deal, error) {
	deal, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, ErrDealNotFound
	}

	now := time.Now()
	deal.DealOwner = &assigneeID
	deal.UpdatedAt = now
	deal.AssignmentHistory = append(deal.AssignmentHistory, models.AssignmentHistoryEntry{
		ID:         newHistoryID(),
		AssignedTo: assigneeID,
		AssignedBy: actorID,
		AssignedAt: now,
		Status:     "active",
		Reason:     "Manual assignment",
	})
	if err := s.repo.Update(deal); err != nil {
		return nil, err
	}
	return deal, nil
}

func (s *DealService) BulkAssign(ids []int, assigneeID, actorID int) models.BulkResult {
	result := models.BulkResult{Total: len(ids)}
	for _, id := range ids {
		if _, err := s.Assign(id, assigneeID, actorID); err != nil {
			result.Fail(id, err)
			continue
		}
		result.Succeeded++
	}
	return result
}

func (s *DealService) GetByID(id int) (*models.Deal, error) {
	deal, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, ErrDealNotFound
	}
	return deal, nil
}

func (s *DealService) List(limit, offset int) []models.Deal {
	deals, err := s.repo.List(limit, offset)
	if err != nil {
		s.log.Error("listing deals failed", zap.Error(err))
		return []models.Deal{}
	}
	return deals
}

func (s *DealService) ListByAssignee(assigneeID int) []models.Deal {
	deals, err := s.repo.ListByAssignee(assigneeID)
	if err != nil {
		s.log.Error("listing deals by assignee failed", zap.Int("assignee_id", assigneeID), zap.Error(err))
		return []models.Deal{}
	}
	return deals
}

func (s *DealService) ListByStage(stage models.DealStage) []models.Deal {
	deals, err := s.repo.ListByStage(stage)
	if err != nil {
		s.log.Error("listing deals by stage failed", zap.String("stage", string(stage)), zap.Error(err))
		return []models.Deal{}
	}
	return deals
}

// StageHistory returns the transition log of one deal.
func (s *DealService) StageHistory(id int) ([]models.StageHistoryEntry, error) {
	deal, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	return deal.StageHistory, nil
}

func (s *DealService) Delete(id int) error {
	return s.repo.Delete(id)
}
