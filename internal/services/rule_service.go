package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

// RuleStore is the persistence side of assignment rules.
type RuleStore interface {
	RuleSource
	Create(rule *models.AssignmentRule) error
	Update(rule *models.AssignmentRule) error
	GetByID(id int) (*models.AssignmentRule, error)
	List() ([]models.AssignmentRule, error)
	Delete(id int) error
}

// ValidationError carries the full list of problems found in a payload so a
// caller can surface all of them at once. It is a client error, never logged
// as a system failure.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

type RuleService struct {
	repo RuleStore
	log  *zap.Logger
}

func NewRuleService(repo RuleStore, log *zap.Logger) *RuleService {
	return &RuleService{repo: repo, log: log}
}

func (s *RuleService) Create(rule *models.AssignmentRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	if rule.Priority == 0 {
		rule.Priority = 1
	}
	if rule.FallbackStrategy == "" {
		rule.FallbackStrategy = models.FallbackLeastWorkload
	}
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	return s.repo.Create(rule)
}

func (s *RuleService) Update(id int, rule *models.AssignmentRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	current, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrRuleNotFound
	}
	rule.ID = id
	rule.CreatedAt = current.CreatedAt
	rule.UpdatedAt = time.Now()
	if rule.Priority == 0 {
		rule.Priority = 1
	}
	if rule.FallbackStrategy == "" {
		rule.FallbackStrategy = models.FallbackLeastWorkload
	}
	return s.repo.Update(rule)
}

func (s *RuleService) GetByID(id int) (*models.AssignmentRule, error) {
	return s.repo.GetByID(id)
}

// List degrades to an empty collection when the store is unreachable.
func (s *RuleService) List() []models.AssignmentRule {
	rules, err := s.repo.List()
	if err != nil {
		s.log.Error("listing assignment rules failed", zap.Error(err))
		return []models.AssignmentRule{}
	}
	return rules
}

func (s *RuleService) Delete(id int) error {
	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRuleNotFound
		}
		return err
	}
	return nil
}

// Toggle flips the active flag and returns the updated rule.
func (s *RuleService) Toggle(id int) (*models.AssignmentRule, error) {
	rule, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ErrRuleNotFound
	}
	rule.IsActive = !rule.IsActive
	rule.UpdatedAt = time.Now()
	if err := s.repo.Update(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

var validOperators = map[string]bool{
	models.OpEquals:      true,
	models.OpNotEquals:   true,
	models.OpContains:    true,
	models.OpGreaterThan: true,
	models.OpLessThan:    true,
	models.OpBetween:     true,
	models.OpIn:          true,
}

func validateRule(rule *models.AssignmentRule) error {
	var problems []string

	if strings.TrimSpace(rule.Name) == "" {
		problems = append(problems, "Rule name is required")
	}
	if !rule.Entity.Valid() {
		problems = append(problems, "Valid entity type is required")
	}
	if len(rule.Criteria.Conditions) == 0 {
		problems = append(problems, "At least one criteria condition is required")
	}
	if rule.FallbackStrategy != "" && rule.FallbackStrategy != models.FallbackLeastWorkload {
		problems = append(problems, "Unknown fallback strategy")
	}

	for i, cond := range rule.Criteria.Conditions {
		n := i + 1
		if cond.Field == "" {
			problems = append(problems, fmt.Sprintf("Condition %d: Field is required", n))
		}
		if cond.Operator == "" {
			problems = append(problems, fmt.Sprintf("Condition %d: Operator is required", n))
		} else if !validOperators[cond.Operator] {
			problems = append(problems, fmt.Sprintf("Condition %d: Unknown operator %q", n, cond.Operator))
		}
		if cond.Value == nil || cond.Value == "" {
			problems = append(problems, fmt.Sprintf("Condition %d: Value is required", n))
		}
		if cond.AssignTo == 0 {
			problems = append(problems, fmt.Sprintf("Condition %d: Assignment target is required", n))
		}

		switch cond.Operator {
		case models.OpBetween:
			if pair, ok := cond.Value.([]any); !ok || len(pair) != 2 {
				problems = append(problems, fmt.Sprintf("Condition %d: Between requires a [min, max] pair", n))
			}
		case models.OpIn:
			if set, ok := cond.Value.([]any); !ok || len(set) == 0 {
				problems = append(problems, fmt.Sprintf("Condition %d: In requires a non-empty set", n))
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
