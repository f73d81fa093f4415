package services

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

type ContactStore interface {
	Create(contact *models.Contact) (int, error)
	Update(contact *models.Contact) error
	GetByID(id int) (*models.Contact, error)
	List(limit, offset int) ([]models.Contact, error)
	Delete(id int) error
}

type ContactService struct {
	repo     ContactStore
	assigner *AssignmentService
	log      *zap.Logger
}

func NewContactService(repo ContactStore, assigner *AssignmentService, log *zap.Logger) *ContactService {
	return &ContactService{repo: repo, assigner: assigner, log: log}
}

func (s *ContactService) Create(contact *models.Contact, actorID int) error {
	var problems []string
	if strings.TrimSpace(contact.Name) == "" {
		problems = append(problems, "Name is required")
	}
	if contact.Email != "" && !emailRe.MatchString(contact.Email) {
		problems = append(problems, "Please enter a valid email address")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}

	now := time.Now()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	contact.AssignmentHistory = nil
	if contact.AssignedTo == nil {
		if decision := s.assigner.AutoAssign(models.EntityContacts, contact.FieldMap()); decision != nil {
			assignee := decision.AssignedTo
			contact.AssignedTo = &assignee
			contact.AssignmentHistory = append(contact.AssignmentHistory,
				NewAssignmentHistoryEntry(decision, actorID, now))
		}
	}

	id, err := s.repo.Create(contact)
	if err != nil {
		return err
	}
	contact.ID = id
	return nil
}

func (s *ContactService) Update(id int, contact *models.Contact) error {
	if contact.Email != "" && !emailRe.MatchString(contact.Email) {
		return &ValidationError{Problems: []string{"Please enter a valid email address"}}
	}
	current, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrContactNotFound
	}
	contact.ID = id
	contact.CreatedAt = current.CreatedAt
	contact.UpdatedAt = time.Now()
	contact.AssignmentHistory = current.AssignmentHistory
	return s.repo.Update(contact)
}

// Assign reassigns a single contact and records the change.
func (s *ContactService) Assign(id, assigneeID, actorID int) (*models.Contact, error) {
	contact, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, ErrContactNotFound
	}

	now := time.Now()
	contact.AssignedTo = &assigneeID
	contact.UpdatedAt = now
	contact.AssignmentHistory = append(contact.AssignmentHistory, models.AssignmentHistoryEntry{
		ID:         newHistoryID(),
		AssignedTo: assigneeID,
		AssignedBy: actorID,
		AssignedAt: now,
		Status:     "active",
		Reason:     "Manual assignment",
	})
	if err := s.repo.Update(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// BulkAssign assigns many contacts to one member; items settle independently.
func (s *ContactService) BulkAssign(ids []int, assigneeID, actorID int) models.BulkResult {
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

func (s *ContactService) GetByID(id int) (*models.Contact, error) {
	contact, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, ErrContactNotFound
	}
	return contact, nil
}

func (s *ContactService) List(limit, offset int) []models.Contact {
	contacts, err := s.repo.List(limit, offset)
	if err != nil {
		s.log.Error("listing contacts failed", zap.Error(err))
		return []models.Contact{}
	}
	return contacts
}

func (s *ContactService) Delete(id int) error {
	return s.repo.Delete(id)
}
