package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

type fakeRuleStore struct {
	fakeRuleSource
	created *models.AssignmentRule
	updated *models.AssignmentRule
	byID    map[int]*models.AssignmentRule
	listErr error
}

func (f *fakeRuleStore) Create(rule *models.AssignmentRule) error {
	f.created = rule
	rule.ID = 1
	return nil
}

func (f *fakeRuleStore) Update(rule *models.AssignmentRule) error {
	f.updated = rule
	return nil
}

func (f *fakeRuleStore) GetByID(id int) (*models.AssignmentRule, error) {
	return f.byID[id], nil
}

func (f *fakeRuleStore) List() ([]models.AssignmentRule, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rules, nil
}

func (f *fakeRuleStore) Delete(int) error { return nil }

func validTestRule() *models.AssignmentRule {
	return &models.AssignmentRule{
		Name:   "High value deals",
		Entity: models.EntityDeals,
		Criteria: models.RuleCriteria{Conditions: []models.Condition{
			{Field: "amount", Operator: models.OpGreaterThan, Value: float64(100000), AssignTo: 2},
		}},
	}
}

func TestRuleServiceCreateDefaults(t *testing.T) {
	store := &fakeRuleStore{}
	svc := NewRuleService(store, zap.NewNop())

	rule := validTestRule()
	require.NoError(t, svc.Create(rule))

	assert.Equal(t, 1, rule.Priority)
	assert.Equal(t, models.FallbackLeastWorkload, rule.FallbackStrategy)
	assert.False(t, rule.CreatedAt.IsZero())
	assert.Equal(t, rule, store.created)
}

func TestRuleServiceCreateValidation(t *testing.T) {
	svc := NewRuleService(&fakeRuleStore{}, zap.NewNop())

	err := svc.Create(&models.AssignmentRule{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Problems, "Rule name is required")
	assert.Contains(t, verr.Problems, "Valid entity type is required")
	assert.Contains(t, verr.Problems, "At least one criteria condition is required")
}

func TestRuleServiceCreateConditionValidation(t *testing.T) {
	svc := NewRuleService(&fakeRuleStore{}, zap.NewNop())

	rule := &models.AssignmentRule{
		Name:   "r",
		Entity: models.EntityLeads,
		Criteria: models.RuleCriteria{Conditions: []models.Condition{
			{},
			{Field: "value", Operator: models.OpBetween, Value: []any{float64(1)}, AssignTo: 2},
			{Field: "source", Operator: models.OpIn, Value: []any{}, AssignTo: 2},
			{Field: "source", Operator: "regex", Value: "x", AssignTo: 2},
		}},
	}

	err := svc.Create(rule)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Problems, "Condition 1: Field is required")
	assert.Contains(t, verr.Problems, "Condition 1: Operator is required")
	assert.Contains(t, verr.Problems, "Condition 1: Value is required")
	assert.Contains(t, verr.Problems, "Condition 1: Assignment target is required")
	assert.Contains(t, verr.Problems, "Condition 2: Between requires a [min, max] pair")
	assert.Contains(t, verr.Problems, "Condition 3: In requires a non-empty set")
	assert.Contains(t, verr.Problems, `Condition 4: Unknown operator "regex"`)
}

func TestRuleServiceUpdateMissing(t *testing.T) {
	svc := NewRuleService(&fakeRuleStore{byID: map[int]*models.AssignmentRule{}}, zap.NewNop())
	err := svc.Update(9, validTestRule())
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestRuleServiceToggle(t *testing.T) {
	existing := validTestRule()
	existing.ID = 3
	existing.IsActive = true
	store := &fakeRuleStore{byID: map[int]*models.AssignmentRule{3: existing}}
	svc := NewRuleService(store, zap.NewNop())

	rule, err := svc.Toggle(3)
	require.NoError(t, err)
	assert.False(t, rule.IsActive)
	require.NotNil(t, store.updated)

	_, err = svc.Toggle(99)
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestRuleServiceListDegrades(t *testing.T) {
	store := &fakeRuleStore{listErr: errors.New("store down")}
	svc := NewRuleService(store, zap.NewNop())

	assert.Empty(t, svc.List())
}
