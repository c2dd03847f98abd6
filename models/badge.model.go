package models

import "time"

type Badge struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"unique;not null"`
	Description string    `json:"description"`
	IconURL     string    `json:"icon_url"`
	Criteria    string    `json:"criteria"`
	CreatedAt   time.Time `json:"created_at"`
}

type UserBadge struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StudentID uint      `json:"student_id" gorm:"not null;index:idx_user_badge,unique,priority:1"`
	BadgeID   uint      `json:"badge_id" gorm:"not null;index:idx_user_badge,unique,priority:2"`
	AwardedAt time.Time `json:"awarded_at" gorm:"not null"`
	Badge     Badge     `json:"badge" gorm:"foreignKey:BadgeID"`
}
