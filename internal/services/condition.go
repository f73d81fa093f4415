package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

// matchesCondition evaluates one rule condition against an entity's field
// map. A missing field is compared as nil, which fails every operator except
// not_equals. That quirk lets a not_equals condition match entities lacking
// the field entirely; it is intentional and covered by tests.
func matchesCondition(cond models.Condition, fields map[string]any) bool {
	fieldValue := fields[cond.Field]

	switch cond.Operator {
	case models.OpEquals:
		return strictEqual(fieldValue, cond.Value)
	case models.OpNotEquals:
		return !strictEqual(fieldValue, cond.Value)
	case models.OpContains:
		// Falsy field values (nil, empty string, zero, false) never contain
		// anything, even though zero and false stringify to "0" and "false".
		if falsy(fieldValue) {
			return false
		}
		fv := strings.ToLower(stringify(fieldValue))
		return strings.Contains(fv, strings.ToLower(stringify(cond.Value)))
	case models.OpGreaterThan:
		fv, ok1 := toFloat(fieldValue)
		cv, ok2 := toFloat(cond.Value)
		return ok1 && ok2 && fv > cv
	case models.OpLessThan:
		fv, ok1 := toFloat(fieldValue)
		cv, ok2 := toFloat(cond.Value)
		return ok1 && ok2 && fv < cv
	case models.OpBetween:
		pair, ok := cond.Value.([]any)
		if !ok || len(pair) != 2 {
			return false
		}
		fv, ok1 := toFloat(fieldValue)
		lo, ok2 := toFloat(pair[0])
		hi, ok3 := toFloat(pair[1])
		return ok1 && ok2 && ok3 && fv >= lo && fv <= hi
	case models.OpIn:
		set, ok := cond.Value.([]any)
		if !ok {
			return false
		}
		for _, v := range set {
			if strictEqual(fieldValue, v) {
				return true
			}
		}
		return false
	default:
		// Unknown operator never matches and never fails hard.
		return false
	}
}

// strictEqual compares without type coercion. Numbers of any width compare
// numerically since JSON decoding always yields float64.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	return aok && bok && af == bf
}

func falsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0 || math.IsNaN(x)
	case float32:
		return x == 0
	case int:
		return x == 0
	case int64:
		return x == 0
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil && !math.IsNaN(f)
	}
	return 0, false
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
