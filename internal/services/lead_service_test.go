package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

type memLeadStore struct {
	nextID int
	leads  map[int]models.Lead
	err    error
}

func newMemLeadStore() *memLeadStore {
	return &memLeadStore{nextID: 1, leads: map[int]models.Lead{}}
}

func (m *memLeadStore) Create(lead *models.Lead) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	id := m.nextID
	m.nextID++
	lead.ID = id
	m.leads[id] = *lead
	return id, nil
}

func (m *memLeadStore) Update(lead *models.Lead) error {
	if m.err != nil {
		return m.err
	}
	m.leads[lead.ID] = *lead
	return nil
}

func (m *memLeadStore) GetByID(id int) (*models.Lead, error) {
	if m.err != nil {
		return nil, m.err
	}
	lead, ok := m.leads[id]
	if !ok {
		return nil, nil
	}
	return &lead, nil
}

func (m *memLeadStore) List(int, int) ([]models.Lead, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Lead, 0, len(m.leads))
	for id := 1; id < m.nextID; id++ {
		if lead, ok := m.leads[id]; ok {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (m *memLeadStore) ListByAssignee(assigneeID int) ([]models.Lead, error) {
	all, err := m.List(0, 0)
	if err != nil {
		return nil, err
	}
	var out []models.Lead
	for _, lead := range all {
		if lead.AssignedTo != nil && *lead.AssignedTo == assigneeID {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (m *memLeadStore) Delete(id int) error {
	delete(m.leads, id)
	return nil
}

func newLeadServiceForTest(store LeadStore, team *fakeTeamDirectory, rules *fakeRuleSource) *LeadService {
	if team == nil {
		team = &fakeTeamDirectory{}
	}
	if rules == nil {
		rules = &fakeRuleSource{}
	}
	assigner := NewAssignmentService(rules, team, zap.NewNop())
	return NewLeadService(store, assigner, zap.NewNop())
}

func TestLeadCreateDefaultsAndScore(t *testing.T) {
	store := newMemLeadStore()
	svc := newLeadServiceForTest(store, nil, nil)

	lead := &models.Lead{Title: "ERP rollout", Company: "Acme", Score: 999}
	require.NoError(t, svc.Create(lead, 1))

	assert.Equal(t, models.LeadStageNew, lead.Stage)
	assert.Equal(t, "website", lead.Source)
	require.NotNil(t, lead.Qualification)

	// caller-supplied score is ignored, the engine decides
	assert.NotEqual(t, 999, lead.Score)
	assert.GreaterOrEqual(t, lead.Score, 1)
	assert.LessOrEqual(t, lead.Score, 100)

	require.Len(t, lead.ScoreHistory, 1)
	assert.Equal(t, "Lead created", lead.ScoreHistory[0].Reason)
	assert.Nil(t, lead.ScoreHistory[0].PreviousScore)
}

func TestLeadCreateValidation(t *testing.T) {
	svc := newLeadServiceForTest(newMemLeadStore(), nil, nil)

	err := svc.Create(&models.Lead{}, 1)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Problems, "Title and company are required")

	err = svc.Create(&models.Lead{Title: "t", Company: "c", Email: "not-an-email"}, 1)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Problems, "Please enter a valid email address")
}

func TestLeadCreateAutoAssigns(t *testing.T) {
	store := newMemLeadStore()
	team := &fakeTeamDirectory{
		members:   []models.TeamMember{member(9, models.Available)},
		workloads: map[int]models.Workload{9: {}},
	}
	svc := newLeadServiceForTest(store, team, nil)

	lead := &models.Lead{Title: "t", Company: "c"}
	require.NoError(t, svc.Create(lead, 1))

	require.NotNil(t, lead.AssignedTo)
	assert.Equal(t, 9, *lead.AssignedTo)
	require.Len(t, lead.AssignmentHistory, 1)
	assert.Equal(t, "Auto-assigned via fallback strategy (least workload)", lead.AssignmentHistory[0].Reason)
	assert.NotEmpty(t, lead.AssignmentHistory[0].ID)
}

func TestLeadCreateExplicitAssignee(t *testing.T) {
	store := newMemLeadStore()
	svc := newLeadServiceForTest(store, nil, nil)

	assignee := 4
	lead := &models.Lead{Title: "t", Company: "c", AssignedTo: &assignee}
	require.NoError(t, svc.Create(lead, 2))

	require.Len(t, lead.AssignmentHistory, 1)
	assert.Equal(t, "Assigned at creation", lead.AssignmentHistory[0].Reason)
	assert.Equal(t, 2, lead.AssignmentHistory[0].AssignedBy)
}

func TestLeadUpdateExtendsStoredHistory(t *testing.T) {
	store := newMemLeadStore()
	svc := newLeadServiceForTest(store, nil, nil)

	lead := &models.Lead{Title: "t", Company: "c"}
	require.NoError(t, svc.Create(lead, 1))
	id := lead.ID

	// the incoming payload carries a truncated history; the stored one wins
	value := 80000.0
	incoming := &models.Lead{
		Title: "t", Company: "c", Value: &value,
		ScoreHistory: []models.ScoreHistoryEntry{},
	}
	require.NoError(t, svc.Update(id, incoming, 1))

	stored, err := svc.GetByID(id)
	require.NoError(t, err)
	require.NotEmpty(t, stored.ScoreHistory)
	assert.Equal(t, "Lead created", stored.ScoreHistory[0].Reason)
	if len(stored.ScoreHistory) > 1 {
		assert.Equal(t, "Lead updated", stored.ScoreHistory[len(stored.ScoreHistory)-1].Reason)
	}
}

func TestLeadUpdateRecordsReassignment(t *testing.T) {
	store := newMemLeadStore()
	svc := newLeadServiceForTest(store, nil, nil)

	first := 4
	lead := &models.Lead{Title: "t", Company: "c", AssignedTo: &first}
	require.NoError(t, svc.Create(lead, 1))

	second := 5
	incoming := &models.Lead{Title: "t", Company: "c", AssignedTo: &second}
	require.NoError(t, svc.Update(lead.ID, incoming, 3))

	stored, err := svc.GetByID(lead.ID)
	require.NoError(t, err)
	require.Len(t, stored.AssignmentHistory, 2)
	last := stored.AssignmentHistory[1]
	assert.Equal(t, "Reassigned", last.Reason)
	assert.Equal(t, 5, last.AssignedTo)
	assert.Equal(t, 3, last.AssignedBy)
}

func TestLeadUpdateMissing(t *testing.T) {
	svc := newLeadServiceForTest(newMemLeadStore(), nil, nil)
	err := svc.Update(42, &models.Lead{Title: "t", Company: "c"}, 1)
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestLeadAssignAndBulkAssign(t *testing.T) {
	store := newMemLeadStore()
	svc := newLeadServiceForTest(store, nil, nil)

	a := &models.Lead{Title: "a", Company: "c"}
	b := &models.Lead{Title: "b", Company: "c"}
	require.NoError(t, svc.Create(a, 1))
	require.NoError(t, svc.Create(b, 1))

	lead, err := svc.Assign(a.ID, 7, 1)
	require.NoError(t, err)
	require.NotNil(t, lead.AssignedTo)
	assert.Equal(t, 7, *lead.AssignedTo)
	assert.Equal(t, "Manual assignment", lead.AssignmentHistory[len(lead.AssignmentHistory)-1].Reason)

	// bulk settles per item: one hit, one miss
	result := svc.BulkAssign([]int{b.ID, 99}, 7, 1)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Succeeded)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 99, result.Failures[0].ID)
}

func TestLeadListByScore(t *testing.T) {
	store := newMemLeadStore()
	svc := newLeadServiceForTest(store, nil, nil)

	low := &models.Lead{Title: "low", Company: "c"}
	big := 150000.0
	high := &models.Lead{Title: "high", Company: "c", Value: &big, Stage: models.LeadStageQualified}
	require.NoError(t, svc.Create(low, 1))
	require.NoError(t, svc.Create(high, 1))

	ranked := svc.ListByScore()
	require.Len(t, ranked, 2)
	assert.GreaterOrEqual(t, ranked[0].Score, ranked[1].Score)
	assert.Equal(t, "high", ranked[0].Title)
}

func TestLeadRecalculateAllScoresIdempotent(t *testing.T) {
	store := newMemLeadStore()
	svc := newLeadServiceForTest(store, nil, nil)

	lead := &models.Lead{Title: "t", Company: "c"}
	require.NoError(t, svc.Create(lead, 1))

	result := svc.RecalculateAllScores()
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Succeeded)

	// immediate recalculation yields the same score, so no new entries
	stored, err := svc.GetByID(lead.ID)
	require.NoError(t, err)
	entries := len(stored.ScoreHistory)

	svc.RecalculateAllScores()
	stored, err = svc.GetByID(lead.ID)
	require.NoError(t, err)
	assert.Equal(t, entries, len(stored.ScoreHistory))
}

func TestLeadListDegrades(t *testing.T) {
	store := newMemLeadStore()
	store.err = errors.New("store down")
	svc := newLeadServiceForTest(store, nil, nil)

	assert.Empty(t, svc.List(0, 0))
	assert.Empty(t, svc.ListByAssignee(1))
	result := svc.RecalculateAllScores()
	assert.Zero(t, result.Total)
}
