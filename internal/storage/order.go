package storage

import "time"

// Order lifecycle statuses. Transitions are owned by the lifecycle
// service; nothing else writes Status.
const (
	StatusCreated      = "CREATED"
	StatusInProduction = "IN_PRODUCTION"
	StatusCompleted    = "COMPLETED"
	StatusCancelled    = "CANCELLED"
)

type Order struct {
	ID        int64      `json:"id"`
	ModelName string     `json:"model_name"`
	Quantity  int        `json:"quantity"`
	Deadline  time.Time  `json:"deadline"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Status    string     `json:"status"`
}

type NewOrder struct {
	ModelName string    `json:"model_name"`
	Quantity  int       `json:"quantity"`
	Deadline  time.Time `json:"deadline"`
}
