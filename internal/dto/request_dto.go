package dto

// AnswerRequest records one answer in a live session.
type AnswerRequest struct {
	Value string `json:"value"`
}

type NavigateRequest struct {
	Direction string `json:"direction" binding:"required,oneof=next previous"`
}

// ReportQuery is bound from the query string of report endpoints.
type ReportQuery struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Status    string `form:"status" binding:"omitempty,oneof=pending in_progress completed"`
	TestID    uint   `form:"test_id"`
}

type ApplicationListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending in_progress completed"`
	TestID uint   `form:"test_id"`
}
