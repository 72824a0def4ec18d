package grades

type Grade struct {
	ID     int64    `json:"id"`
	UserID string   `json:"user_id"`
	TaskID int64    `json:"task_id"`
	Score  *float64 `json:"score,omitempty"`
	Link   *string  `json:"link,omitempty"`
}

const (
	MinScore = 0
	MaxScore = 100
)
