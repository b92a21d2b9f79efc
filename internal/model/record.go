package model

import (
	"time"

	"github.com/sells-group/valuation-api/internal/valuation"
)

// ValuationRecord is a stored calculation: the submitted input and the
// pipeline's result, kept so the result page and the lead gate can reference
// it by ID.
type ValuationRecord struct {
	ID        string           `json:"id"`
	Input     valuation.Input  `json:"input"`
	Result    valuation.Result `json:"result"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
