package models

import "time"

// EntityType names one of the routable record collections.
type EntityType string

const (
	EntityContacts EntityType = "contacts"
	EntityLeads    EntityType = "leads"
	EntityDeals    EntityType = "deals"
	EntityTasks    EntityType = "tasks"
)

func (e EntityType) Valid() bool {
	switch e {
	case EntityContacts, EntityLeads, EntityDeals, EntityTasks:
		return true
	}
	return false
}

// Condition operators supported by the rule engine.
const (
	OpEquals      = "equals"
	OpNotEquals   = "not_equals"
	OpContains    = "contains"
	OpGreaterThan = "greater_than"
	OpLessThan    = "less_than"
	OpBetween     = "between"
	OpIn          = "in"
)

// FallbackLeastWorkload is the only fallback strategy currently supported.
const FallbackLeastWorkload = "least_workload"

// Condition is one criteria row of an assignment rule. Value is a scalar for
// most operators, a 2-element [min, max] pair for between, a set for in.
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
	AssignTo int    `json:"assignTo"`
}

// RuleCriteria is stored as a single serialized sub-document per rule.
type RuleCriteria struct {
	Conditions []Condition `json:"conditions"`
}

type AssignmentRule struct {
	ID               int          `json:"id"`
	Name             string       `json:"name"`
	Entity           EntityType   `json:"entity"`
	IsActive         bool         `json:"is_active"`
	Priority         int          `json:"priority"`
	Criteria         RuleCriteria `json:"criteria"`
	FallbackStrategy string       `json:"fallback_strategy"`
	AssignTo         *int         `json:"assign_to,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// AssignmentDecision is the audit result of one auto-assignment attempt.
// RuleUsed is nil when the fallback strategy produced the assignment.
type AssignmentDecision struct {
	AssignedTo int    `json:"assigned_to"`
	Reason     string `json:"reason"`
	RuleUsed   *int   `json:"rule_used"`
}

// AssignmentHistoryEntry is appended to an entity's assignment history
// sub-document whenever ownership changes.
type AssignmentHistoryEntry struct {
	ID         string    `json:"id"`
	AssignedTo int       `json:"assignedTo"`
	AssignedBy int       `json:"assignedBy"`
	AssignedAt time.Time `json:"assignedAt"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	RuleUsed   *int      `json:"ruleUsed,omitempty"`
}
