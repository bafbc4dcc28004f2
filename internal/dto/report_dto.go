package dto

type StatusCountDTO struct {
	Status     string  `json:"status"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type MonthlyEvolutionDTO struct {
	Month      string `json:"month"`
	Tests      int    `json:"tests"`
	Candidates int    `json:"candidates"`
}

type TestScoreDTO struct {
	TestID       uint    `json:"test_id"`
	TestTitle    string  `json:"test_title"`
	Completed    int     `json:"completed"`
	AverageScore float64 `json:"average_score"`
}

type ReportDataDTO struct {
	TotalTests         int                   `json:"total_tests"`
	TotalCandidates    int                   `json:"total_candidates"`
	TotalApplications  int                   `json:"total_applications"`
	CompletionRate     int                   `json:"completion_rate"`
	StatusDistribution []StatusCountDTO      `json:"status_distribution"`
	MonthlyEvolution   []MonthlyEvolutionDTO `json:"monthly_evolution"`
	TestScores         []TestScoreDTO        `json:"test_scores"`
}
