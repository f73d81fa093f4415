package models

// BulkFailure reports one failed item of a bulk mutation.
type BulkFailure struct {
	ID    int    `json:"id"`
	Error string `json:"error"`
}

// BulkResult aggregates a bulk mutation. Items succeed or fail
// independently; there is no rollback.
type BulkResult struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failures  []BulkFailure `json:"failures,omitempty"`
}

func (r *BulkResult) Fail(id int, err error) {
	r.Failures = append(r.Failures, BulkFailure{ID: id, Error: err.Error()})
}
