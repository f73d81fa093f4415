package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
	"github.com/apper-canvas/pipelineflow-firm-mega/internal/services"
)

type stubRuleStore struct {
	rules map[int]*models.AssignmentRule
	next  int
}

func newStubRuleStore() *stubRuleStore {
	return &stubRuleStore{rules: map[int]*models.AssignmentRule{}, next: 1}
}

func (s *stubRuleStore) ActiveRulesByEntity(models.EntityType) ([]models.AssignmentRule, error) {
	return nil, nil
}

func (s *stubRuleStore) Create(rule *models.AssignmentRule) error {
	rule.ID = s.next
	s.next++
	copied := *rule
	s.rules[rule.ID] = &copied
	return nil
}

func (s *stubRuleStore) Update(rule *models.AssignmentRule) error {
	copied := *rule
	s.rules[rule.ID] = &copied
	return nil
}

func (s *stubRuleStore) GetByID(id int) (*models.AssignmentRule, error) {
	rule, ok := s.rules[id]
	if !ok {
		return nil, nil
	}
	copied := *rule
	return &copied, nil
}

func (s *stubRuleStore) List() ([]models.AssignmentRule, error) {
	out := make([]models.AssignmentRule, 0, len(s.rules))
	for id := 1; id < s.next; id++ {
		if rule, ok := s.rules[id]; ok {
			out = append(out, *rule)
		}
	}
	return out, nil
}

func (s *stubRuleStore) Delete(id int) error {
	delete(s.rules, id)
	return nil
}

func newRuleRouter(store services.RuleStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewRuleHandler(services.NewRuleService(store, zap.NewNop()))

	r := gin.New()
	r.POST("/rules/", handler.Create)
	r.GET("/rules/", handler.List)
	r.GET("/rules/:id", handler.GetByID)
	r.POST("/rules/:id/toggle", handler.Toggle)
	return r
}

func TestRuleHandlerCreateAndFetch(t *testing.T) {
	router := newRuleRouter(newStubRuleStore())

	body := `{
		"name": "High value deals",
		"entity": "deals",
		"criteria": {"conditions": [
			{"field": "amount", "operator": "greater_than", "value": 100000, "assignTo": 2}
		]}
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/rules/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"High value deals"`)
	// omitted is_active defaults to active
	assert.Contains(t, w.Body.String(), `"is_active":true`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rules/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rules/999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRuleHandlerCreateValidationProblems(t *testing.T) {
	router := newRuleRouter(newStubRuleStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/rules/", strings.NewReader(`{"name": ""}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Rule name is required")
	assert.Contains(t, w.Body.String(), "problems")
}

func TestRuleHandlerToggle(t *testing.T) {
	store := newStubRuleStore()
	router := newRuleRouter(store)

	store.Create(&models.AssignmentRule{
		Name: "r", Entity: models.EntityLeads, IsActive: true,
		Criteria: models.RuleCriteria{Conditions: []models.Condition{
			{Field: "source", Operator: models.OpEquals, Value: "website", AssignTo: 1},
		}},
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/rules/1/toggle", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_active":false`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/rules/42/toggle", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
