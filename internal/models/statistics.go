package models

// PriorityBreakdown counts tasks per priority level.
type PriorityBreakdown struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
	Urgent int `json:"urgent"`
}

// Statistics is the aggregate overview over the whole task collection.
type Statistics struct {
	Total      int               `json:"total"`
	Pending    int               `json:"pending"`
	InProgress int               `json:"inProgress"`
	Completed  int               `json:"completed"`
	Cancelled  int               `json:"cancelled"`
	ByPriority PriorityBreakdown `json:"byPriority"`
	Overdue    int               `json:"overdue"`
}
