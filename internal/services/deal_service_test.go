package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

type memDealStore struct {
	nextID int
	deals  map[int]models.Deal
}

func newMemDealStore() *memDealStore {
	return &memDealStore{nextID: 1, deals: map[int]models.Deal{}}
}

func (m *memDealStore) Create(deal *models.Deal) (int, error) {
	id := m.nextID
	m.nextID++
	deal.ID = id
	m.deals[id] = *deal
	return id, nil
}

func (m *memDealStore) Update(deal *models.Deal) error {
	m.deals[deal.ID] = *deal
	return nil
}

func (m *memDealStore) GetByID(id int) (*models.Deal, error) {
	deal, ok := m.deals[id]
	if !ok {
		return nil, nil
	}
	return &deal, nil
}

func (m *memDealStore) List(int, int) ([]models.Deal, error) {
	out := make([]models.Deal, 0, len(m.deals))
	for id := 1; id < m.nextID; id++ {
		if deal, ok := m.deals[id]; ok {
			out = append(out, deal)
		}
	}
	return out, nil
}

func (m *memDealStore) ListByAssignee(assigneeID int) ([]models.Deal, error) {
	all, _ := m.List(0, 0)
	var out []models.Deal
	for _, deal := range all {
		if deal.DealOwner != nil && *deal.DealOwner == assigneeID {
			out = append(out, deal)
		}
	}
	return out, nil
}

func (m *memDealStore) ListByStage(stage models.DealStage) ([]models.Deal, error) {
	all, _ := m.List(0, 0)
	var out []models.Deal
	for _, deal := range all {
		if deal.Stage == stage {
			out = append(out, deal)
		}
	}
	return out, nil
}

func (m *memDealStore) Delete(id int) error {
	delete(m.deals, id)
	return nil
}

func newDealServiceForTest(store DealStore) *DealService {
	assigner := NewAssignmentService(&fakeRuleSource{}, &fakeTeamDirectory{}, zap.NewNop())
	return NewDealService(store, assigner, zap.NewNop())
}

func TestDealCreateOpensStageHistory(t *testing.T) {
	store := newMemDealStore()
	svc := newDealServiceForTest(store)

	deal := &models.Deal{Title: "Acme expansion", Amount: 50000}
	require.NoError(t, svc.Create(deal, 1))

	assert.Equal(t, models.DealStageNew, deal.Stage)
	assert.Equal(t, 25, deal.Probability)
	require.Len(t, deal.StageHistory, 1)
	assert.Equal(t, "new", deal.StageHistory[0].Stage)
	assert.Nil(t, deal.StageHistory[0].ExitedAt)
}

func TestDealCreateRejectsUnknownStage(t *testing.T) {
	svc := newDealServiceForTest(newMemDealStore())

	err := svc.Create(&models.Deal{Title: "x", Stage: "discovery"}, 1)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Problems, "Unknown pipeline stage")
}

func TestDealUpdateStageAdvancesHistory(t *testing.T) {
	store := newMemDealStore()
	svc := newDealServiceForTest(store)

	deal := &models.Deal{Title: "x"}
	require.NoError(t, svc.Create(deal, 1))

	updated, err := svc.UpdateStage(deal.ID, models.DealStageQualified)
	require.NoError(t, err)
	assert.Equal(t, models.DealStageQualified, updated.Stage)
	require.Len(t, updated.StageHistory, 2)

	closed := updated.StageHistory[0]
	require.NotNil(t, closed.ExitedAt)
	assert.GreaterOrEqual(t, closed.DurationMs, int64(0))

	open := updated.StageHistory[1]
	assert.Equal(t, "qualified", open.Stage)
	assert.Nil(t, open.ExitedAt)
}

func TestDealUpdateStageSameStageIsNoOp(t *testing.T) {
	store := newMemDealStore()
	svc := newDealServiceForTest(store)

	deal := &models.Deal{Title: "x"}
	require.NoError(t, svc.Create(deal, 1))

	updated, err := svc.UpdateStage(deal.ID, models.DealStageNew)
	require.NoError(t, err)
	assert.Len(t, updated.StageHistory, 1)
}

func TestDealUpdateStageValidation(t *testing.T) {
	svc := newDealServiceForTest(newMemDealStore())

	_, err := svc.UpdateStage(1, "discovery")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.UpdateStage(42, models.DealStageQualified)
	assert.ErrorIs(t, err, ErrDealNotFound)
}

func TestDealGenericUpdatePreservesServerOwnedFields(t *testing.T) {
	store := newMemDealStore()
	svc := newDealServiceForTest(store)

	deal := &models.Deal{Title: "x", Amount: 10000}
	require.NoError(t, svc.Create(deal, 1))
	_, err := svc.UpdateStage(deal.ID, models.DealStageProposal)
	require.NoError(t, err)

	// the payload tries to rewrite the stage and wipe the history
	incoming := &models.Deal{
		Title:        "x renamed",
		Amount:       12000,
		Stage:        models.DealStageClosedWon,
		StageHistory: nil,
	}
	require.NoError(t, svc.Update(deal.ID, incoming, 1))

	stored, err := svc.GetByID(deal.ID)
	require.NoError(t, err)
	assert.Equal(t, "x renamed", stored.Title)
	assert.InDelta(t, 12000, stored.Amount, 0.01)
	assert.Equal(t, models.DealStageProposal, stored.Stage)
	assert.Len(t, stored.StageHistory, 2)
}

func TestDealBulkUpdateStage(t *testing.T) {
	store := newMemDealStore()
	svc := newDealServiceForTest(store)

	a := &models.Deal{Title: "a"}
	b := &models.Deal{Title: "b"}
	require.NoError(t, svc.Create(a, 1))
	require.NoError(t, svc.Create(b, 1))

	result := svc.BulkUpdateStage([]int{a.ID, b.ID, 99}, models.DealStageNegotiation)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Succeeded)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 99, result.Failures[0].ID)

	moved := svc.ListByStage(models.DealStageNegotiation)
	assert.Len(t, moved, 2)
}

func TestDealStageHistoryLookup(t *testing.T) {
	store := newMemDealStore()
	svc := newDealServiceForTest(store)

	deal := &models.Deal{Title: "x"}
	require.NoError(t, svc.Create(deal, 1))

	history, err := svc.StageHistory(deal.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = svc.StageHistory(42)
	assert.ErrorIs(t, err, ErrDealNotFound)
}

func TestDealAssignRecordsHistory(t *testing.T) {
	store := newMemDealStore()
	svc := newDealServiceForTest(store)

	deal := &models.Deal{Title: "x"}
	require.NoError(t, svc.Create(deal, 1))

	assigned, err := svc.Assign(deal.ID, 6, 2)
	require.NoError(t, err)
	require.NotNil(t, assigned.DealOwner)
	assert.Equal(t, 6, *assigned.DealOwner)

	last := assigned.AssignmentHistory[len(assigned.AssignmentHistory)-1]
	assert.Equal(t, "Manual assignment", last.Reason)
	assert.Equal(t, 2, last.AssignedBy)
	assert.WithinDuration(t, time.Now(), last.AssignedAt, time.Minute)
}
