package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

// RuleSource supplies assignment rules for one entity type, pre-filtered to
// active rules and pre-sorted ascending by priority (ties by id, which
// preserves insertion order).
type RuleSource interface {
	ActiveRulesByEntity(entity models.EntityType) ([]models.AssignmentRule, error)
}

// TeamDirectory is the read side of the team-member collaborator.
// ListMembers returns the roster ordered by id ascending; the workload
// fallback breaks ties on that order, so ties go to the lowest member id.
type TeamDirectory interface {
	ListMembers() ([]models.TeamMember, error)
	GetWorkload(memberID int) (models.Workload, error)
}

// AssignmentService decides who a new or updated entity belongs to. Rules
// are tried in priority order first; when none yields an available assignee
// the least-workload fallback runs. Failures are never fatal to the flow
// that invoked the assignment: they degrade to "no decision".
type AssignmentService struct {
	rules RuleSource
	team  TeamDirectory
	log   *zap.Logger
}

func NewAssignmentService(rules RuleSource, team TeamDirectory, log *zap.Logger) *AssignmentService {
	return &AssignmentService{rules: rules, team: team, log: log}
}

// AutoAssign produces an assignment decision for the given entity fields,
// or nil when no automatic assignment is possible and the caller must
// prompt for a manual choice.
func (s *AssignmentService) AutoAssign(entity models.EntityType, fields map[string]any) *models.AssignmentDecision {
	rules, err := s.rules.ActiveRulesByEntity(entity)
	if err != nil {
		s.log.Error("auto-assign: loading rules failed", zap.String("entity", string(entity)), zap.Error(err))
		return nil
	}
	members, err := s.team.ListMembers()
	if err != nil {
		s.log.Error("auto-assign: loading roster failed", zap.Error(err))
		return nil
	}

	for _, rule := range rules {
		if assignee, ok := evaluateRule(rule, fields, members); ok {
			ruleID := rule.ID
			return &models.AssignmentDecision{
				AssignedTo: assignee,
				Reason:     fmt.Sprintf("Auto-assigned via rule: %s", rule.Name),
				RuleUsed:   &ruleID,
			}
		}
	}

	return s.fallbackAssignment(members)
}

// evaluateRule walks the rule's conditions in listed order and returns the
// first condition target that both matches and is an available roster
// member. A rule with zero conditions never matches.
func evaluateRule(rule models.AssignmentRule, fields map[string]any, members []models.TeamMember) (int, bool) {
	for _, cond := range rule.Criteria.Conditions {
		if !matchesCondition(cond, fields) {
			continue
		}
		if memberAvailable(members, cond.AssignTo) {
			return cond.AssignTo, true
		}
	}
	return 0, false
}

func memberAvailable(members []models.TeamMember, id int) bool {
	for _, m := range members {
		if m.ID == id {
			return m.Availability == models.Available
		}
	}
	return false
}

// fallbackAssignment picks the available member with the least total
// workload. The workload read is a snapshot, not a transaction; concurrent
// assignments can pick the same member, which is an accepted tradeoff.
func (s *AssignmentService) fallbackAssignment(members []models.TeamMember) *models.AssignmentDecision {
	var best *models.TeamMember
	bestTotal := 0
	for i := range members {
		m := members[i]
		if m.Availability != models.Available {
			continue
		}
		wl, err := s.team.GetWorkload(m.ID)
		if err != nil {
			s.log.Error("auto-assign: workload lookup failed", zap.Int("member_id", m.ID), zap.Error(err))
			return nil
		}
		// Strictly-less keeps the first minimum seen in roster order.
		if best == nil || wl.TotalActive < bestTotal {
			best = &members[i]
			bestTotal = wl.TotalActive
		}
	}
	if best == nil {
		return nil
	}
	return &models.AssignmentDecision{
		AssignedTo: best.ID,
		Reason:     "Auto-assigned via fallback strategy (least workload)",
	}
}

func newHistoryID() string { return uuid.NewString() }

// NewAssignmentHistoryEntry turns a decision into the audit entry appended
// to the entity's assignment history sub-document.
func NewAssignmentHistoryEntry(decision *models.AssignmentDecision, assignedBy int, now time.Time) models.AssignmentHistoryEntry {
	return models.AssignmentHistoryEntry{
		ID:         newHistoryID(),
		AssignedTo: decision.AssignedTo,
		AssignedBy: assignedBy,
		AssignedAt: now,
		Status:     "active",
		Reason:     decision.Reason,
		RuleUsed:   decision.RuleUsed,
	}
}
