package model

import (
	"time"

	"gorm.io/datatypes"
)

const NotificationTestCompleted = "test_completed"

type NotificationExtra struct {
	ApplicationID uint   `json:"application_id"`
	Score         int    `json:"score"`
	TestTitle     string `json:"test_title"`
}

type Notification struct {
	ID        uint                                  `gorm:"primarykey" json:"id"`
	CompanyID uint                                  `json:"company_id" gorm:"not null;index"`
	Title     string                                `json:"title" gorm:"not null"`
	Message   string                                `json:"message" gorm:"type:text"`
	Type      string                                `json:"type" gorm:"not null;index"`
	Extra     datatypes.JSONType[NotificationExtra] `json:"extra"`
	Read      bool                                  `json:"read" gorm:"not null;default:false"`
	CreatedAt time.Time                             `json:"created_at"`
}
