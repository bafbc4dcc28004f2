package dto

// QuestionCreateDTO is used within TestCreateDTO for admin test creation.
type QuestionCreateDTO struct {
	Prompt        string   `json:"prompt" binding:"required"`
	Kind          string   `json:"kind" binding:"required,oneof=multiple_choice free_text scale"`
	Choices       []string `json:"choices" binding:"omitempty,dive,required"`
	ScaleMin      *int     `json:"scale_min"`
	ScaleMax      *int     `json:"scale_max"`
	CorrectOption *string  `json:"correct_option"`
	Weight        float64  `json:"weight" binding:"omitempty,gt=0"`
	DisplayOrder  int      `json:"display_order" binding:"required,min=1"`
}

// TestConfigDTO mirrors model.TestConfig on the wire.
type TestConfigDTO struct {
	TimeLimitMinutes *int `json:"time_limit_minutes,omitempty" binding:"omitempty,min=1"`
	ShuffleQuestions bool `json:"shuffle_questions,omitempty"`
	ShowResult       bool `json:"show_result,omitempty"`
}

// TestCreateDTO is for admin to create a new test with all its questions.
// Updates send the same body and replace every question.
type TestCreateDTO struct {
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description,omitempty"`
	Status      string              `json:"status,omitempty" binding:"omitempty,oneof=draft active inactive"`
	Config      TestConfigDTO       `json:"config"`
	Questions   []QuestionCreateDTO `json:"questions" binding:"required,min=1,dive"`
}

type TestStatusUpdateDTO struct {
	Status string `json:"status" binding:"required,oneof=draft active inactive"`
}

// CandidateCreateDTO is also the body of a candidate update.
type CandidateCreateDTO struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Position string `json:"position"`
}

type CandidateStatusUpdateDTO struct {
	Status string `json:"status" binding:"required,oneof=active in_review concluded"`
}

type ApplicationCreateDTO struct {
	CandidateID uint `json:"candidate_id" binding:"required"`
	TestID      uint `json:"test_id" binding:"required"`
}

// BatchCreateDTO is also the body of a batch update.
type BatchCreateDTO struct {
	Name           string  `json:"name" binding:"required"`
	Description    string  `json:"description"`
	TestID         uint    `json:"test_id" binding:"required"`
	ExpiresAt      *string `json:"expires_at" binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	CandidateLimit *int    `json:"candidate_limit" binding:"omitempty,min=1"`
}

type BatchStatusUpdateDTO struct {
	Status string `json:"status" binding:"required,oneof=active inactive expired"`
}

type BatchSendDTO struct {
	CandidateIDs []uint `json:"candidate_ids" binding:"required,min=1"`
}

type TokenRequestDTO struct {
	UserID   uint   `json:"user_id" binding:"required"`
	TenantID uint   `json:"tenant_id" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=super_admin admin_plataforma admin_empresa usuario_empresa"`
}

type TokenResponseDTO struct {
	Token string `json:"token"`
}
