package services

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

// LeadStore is the record-store side of the leads collection.
type LeadStore interface {
	Create(lead *models.Lead) (int, error)
	Update(lead *models.Lead) error
	GetByID(id int) (*models.Lead, error)
	List(limit, offset int) ([]models.Lead, error)
	ListByAssignee(assigneeID int) ([]models.Lead, error)
	Delete(id int) error
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type LeadService struct {
	repo     LeadStore
	assigner *AssignmentService
	log      *zap.Logger
}

func NewLeadService(repo LeadStore, assigner *AssignmentService, log *zap.Logger) *LeadService {
	return &LeadService{repo: repo, assigner: assigner, log: log}
}

// Create validates, scores and optionally auto-assigns a new lead. The
// score is always engine-computed; any caller-supplied score is discarded.
func (s *LeadService) Create(lead *models.Lead, actorID int) error {
	if err := validateLead(lead, true); err != nil {
		return err
	}

	now := time.Now()
	if lead.Stage == "" {
		lead.Stage = models.LeadStageNew
	}
	if lead.Source == "" {
		lead.Source = "website"
	}
	if lead.Qualification == nil {
		lead.Qualification = &models.QualificationChecklist{}
	}
	lead.CreatedAt = now
	lead.UpdatedAt = now

	lead.Score = CalculateLeadScore(lead, now)
	lead.ScoreHistory = appendScoreHistory(nil, lead.Score, "Lead created", now)

	lead.AssignmentHistory = nil
	if lead.AssignedTo == nil {
		if decision := s.assigner.AutoAssign(models.EntityLeads, lead.FieldMap()); decision != nil {
			assignee := decision.AssignedTo
			lead.AssignedTo = &assignee
			lead.AssignmentHistory = append(lead.AssignmentHistory,
				NewAssignmentHistoryEntry(decision, actorID, now))
		}
	} else {
		lead.AssignmentHistory = append(lead.AssignmentHistory, models.AssignmentHistoryEntry{
			ID:         newHistoryID(),
			AssignedTo: *lead.AssignedTo,
			AssignedBy: actorID,
			AssignedAt: now,
			Status:     "active",
			Reason:     "Assigned at creation",
		})
	}

	id, err := s.repo.Create(lead)
	if err != nil {
		return err
	}
	lead.ID = id
	return nil
}

// Update rescores the lead from the incoming fields, appending to the
// STORED score history rather than trusting the caller's copy.
func (s *LeadService) Update(id int, lead *models.Lead, actorID int) error {
	if err := validateLead(lead, false); err != nil {
		return err
	}

	current, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrLeadNotFound
	}

	now := time.Now()
	lead.ID = id
	lead.CreatedAt = current.CreatedAt
	lead.UpdatedAt = now
	if lead.Stage == "" {
		lead.Stage = models.LeadStageNew
	}
	if lead.Source == "" {
		lead.Source = "website"
	}

	lead.Score = CalculateLeadScore(lead, now)
	lead.ScoreHistory = appendScoreHistory(current.ScoreHistory, lead.Score, "Lead updated", now)

	lead.AssignmentHistory = current.AssignmentHistory
	if changedOwner(current.AssignedTo, lead.AssignedTo) {
		lead.AssignmentHistory = append(lead.AssignmentHistory, models.AssignmentHistoryEntry{
			ID:         newHistoryID(),
			AssignedTo: *lead.AssignedTo,
			AssignedBy: actorID,
			AssignedAt: now,
			Status:     "active",
			Reason:     "Reassigned",
		})
	}

	return s.repo.Update(lead)
}

func (s *LeadService) GetByID(id int) (*models.Lead, error) {
	lead, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrLeadNotFound
	}
	return lead, nil
}

// List degrades to an empty collection when the store is unreachable.
func (s *LeadService) List(limit, offset int) []models.Lead {
	leads, err := s.repo.List(limit, offset)
	if err != nil {
		s.log.Error("listing leads failed", zap.Error(err))
		return []models.Lead{}
	}
	return leads
}

func (s *LeadService) ListByAssignee(assigneeID int) []models.Lead {
	leads, err := s.repo.ListByAssignee(assigneeID)
	if err != nil {
		s.log.Error("listing leads by assignee failed", zap.Int("assignee_id", assigneeID), zap.Error(err))
		return []models.Lead{}
	}
	return leads
}

// ListByScore returns all leads sorted by score, highest first.
func (s *LeadService) ListByScore() []models.Lead {
	leads := s.List(0, 0)
	sort.SliceStable(leads, func(i, j int) bool {
		return leads[i].Score > leads[j].Score
	})
	return leads
}

func (s *LeadService) Delete(id int) error {
	return s.repo.Delete(id)
}

// Assign reassigns a single lead and records the change.
func (s *LeadService) Assign(id, assigneeID, actorID int) (*models.Lead, error) {
	lead, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrLeadNotFound
	}

	now := time.Now()
	lead.AssignedTo = &assigneeID
	lead.UpdatedAt = now
	lead.AssignmentHistory = append(lead.AssignmentHistory, models.AssignmentHistoryEntry{
		ID:         newHistoryID(),
		AssignedTo: assigneeID,
		AssignedBy: actorID,
		AssignedAt: now,
		Status:     "active",
		Reason:     "Manual assignment",
	})
	if err := s.repo.Update(lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// BulkAssign assigns many leads to one member. Items settle independently;
// the aggregate reports succeeded vs total with per-item failures.
func (s *LeadService) BulkAssign(ids []int, assigneeID, actorID int) models.BulkResult {
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

// RecalculateAllScores rescores every lead, useful after scoring-rule
// changes. Unchanged scores produce no new history entries.
func (s *LeadService) RecalculateAllScores() models.BulkResult {
	leads, err := s.repo.List(0, 0)
	if err != nil {
		s.log.Error("bulk recalculation: listing leads failed", zap.Error(err))
		return models.BulkResult{}
	}

	now := time.Now()
	result := models.BulkResult{Total: len(leads)}
	for i := range leads {
		lead := leads[i]
		lead.Score = CalculateLeadScore(&lead, now)
		lead.ScoreHistory = appendScoreHistory(lead.ScoreHistory, lead.Score, "Bulk recalculation", now)
		if err := s.repo.Update(&lead); err != nil {
			result.Fail(lead.ID, err)
			continue
		}
		result.Succeeded++
	}
	return result
}

func validateLead(lead *models.Lead, requireIdentity bool) error {
	var problems []string
	if requireIdentity && (strings.TrimSpace(lead.Title) == "" || strings.TrimSpace(lead.Company) == "") {
		problems = append(problems, "Title and company are required")
	}
	if lead.Email != "" && !emailRe.MatchString(lead.Email) {
		problems = append(problems, "Please enter a valid email address")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func changedOwner(before, after *int) bool {
	if after == nil {
		return false
	}
	return before == nil || *before != *after
}
