package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

// TeamStore is the persistence side of the team directory. The roster is
// small and fixed; it is never paginated.
type TeamStore interface {
	List() ([]models.TeamMember, error)
	GetByID(id int) (*models.TeamMember, error)
	GetByEmail(email string) (*models.TeamMember, error)
	UpdateAvailability(id int, availability models.Availability, updatedAt time.Time) error
}

// WorkloadSource counts a member's currently active items in one collection.
type WorkloadSource interface {
	CountActiveByAssignee(memberID int) (int, error)
}

// TeamService implements TeamDirectory on top of the directory store and
// live per-collection assignment counts.
type TeamService struct {
	repo     TeamStore
	contacts WorkloadSource
	leads    WorkloadSource
	deals    WorkloadSource
	tasks    WorkloadSource
	log      *zap.Logger
}

func NewTeamService(repo TeamStore, contacts, leads, deals, tasks WorkloadSource, log *zap.Logger) *TeamService {
	return &TeamService{repo: repo, contacts: contacts, leads: leads, deals: deals, tasks: tasks, log: log}
}

// ListMembers returns the roster ordered by id ascending. The workload
// fallback relies on that order for its tie-break.
func (s *TeamService) ListMembers() ([]models.TeamMember, error) {
	return s.repo.List()
}

func (s *TeamService) GetMember(id int) (*models.TeamMember, error) {
	m, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMemberNotFound
	}
	return m, nil
}

// GetWorkload snapshots a member's active item counts by collection.
func (s *TeamService) GetWorkload(memberID int) (models.Workload, error) {
	var wl models.Workload
	var err error

	if wl.Contacts, err = s.contacts.CountActiveByAssignee(memberID); err != nil {
		return models.Workload{}, err
	}
	if wl.Leads, err = s.leads.CountActiveByAssignee(memberID); err != nil {
		return models.Workload{}, err
	}
	if wl.Deals, err = s.deals.CountActiveByAssignee(memberID); err != nil {
		return models.Workload{}, err
	}
	if wl.Tasks, err = s.tasks.CountActiveByAssignee(memberID); err != nil {
		return models.Workload{}, err
	}
	wl.TotalActive = wl.Contacts + wl.Leads + wl.Deals + wl.Tasks
	return wl, nil
}

func (s *TeamService) SetAvailability(id int, availability models.Availability) (*models.TeamMember, error) {
	if !availability.Valid() {
		return nil, &ValidationError{Problems: []string{"Availability must be available or unavailable"}}
	}
	member, err := s.GetMember(id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.repo.UpdateAvailability(id, availability, now); err != nil {
		return nil, err
	}
	member.Availability = availability
	member.UpdatedAt = now
	s.log.Info("availability updated", zap.Int("member_id", id), zap.String("availability", string(availability)))
	return member, nil
}
