package storage

type Model struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Steps       []StepTemplate `json:"steps"`
}

// StepTemplate is one stage of a model's process. StepOrder values within
// a model are contiguous and start at 1; the admin storage reindexes on
// insert and delete.
type StepTemplate struct {
	ID               int64  `json:"id"`
	ModelName        string `json:"model_name"`
	StepOrder        int    `json:"step_order"`
	DurationSeconds  int64  `json:"duration_seconds_per_unit"`
	MachineName      string `json:"machine_name"`
	SemifinishedName string `json:"semifinished_name"`
}
