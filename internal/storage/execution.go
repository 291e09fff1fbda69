package storage

import "time"

// StepExecution is the dated instantiation of one StepTemplate for one
// order. MachineName is a plain string copied from the template at
// creation time, so historical records survive machine catalog edits.
// Scheduled dates are written once by the scheduler and never touched
// again; only the actual window moves.
type StepExecution struct {
	ID               int64     `json:"id"`
	OrderID          int64     `json:"order_id"`
	StepIndex        int       `json:"step_index"`
	MachineName      string    `json:"machine_name"`
	SemifinishedName string    `json:"semifinished_name"`
	ScheduledStart   time.Time `json:"scheduled_start"`
	ScheduledEnd     time.Time `json:"scheduled_end"`
	ActualStart      time.Time `json:"actual_start"`
	ActualEnd        time.Time `json:"actual_end"`
	AssigneeEmail    *string   `json:"assignee_email"`
}

// ScheduleBlock is the timeline projection: one execution joined with
// its order and the resolved assignee.
type ScheduleBlock struct {
	ExecutionID      int64     `json:"execution_id"`
	OrderID          int64     `json:"order_id"`
	ModelName        string    `json:"model_name"`
	StepIndex        int       `json:"step_index"`
	MachineName      string    `json:"machine_name"`
	SemifinishedName string    `json:"semifinished_name"`
	ScheduledStart   time.Time `json:"scheduled_start"`
	ScheduledEnd     time.Time `json:"scheduled_end"`
	ActualStart      time.Time `json:"actual_start"`
	ActualEnd        time.Time `json:"actual_end"`
	AssigneeEmail    *string   `json:"assignee_email"`
	AssigneeName     *string   `json:"assignee_name"`
}
