package models

import "time"

type Institution struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Degree groups courses; students enrol in a degree, not a single course.
type Degree struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	Name               string    `json:"name" gorm:"not null"`
	InstitutionID      uint      `json:"institution_id" gorm:"index;not null"`
	AcademicCalendarID *uint     `json:"academic_calendar_id" gorm:"index"`
	CreatedAt          time.Time `json:"created_at"`
}

// AcademicCalendar is a term made of numbered weeks.
type AcademicCalendar struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
}

type CalendarWeek struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CalendarID uint      `json:"calendar_id" gorm:"not null;index:idx_calendar_week,unique,priority:1"`
	WeekNumber int       `json:"week_number" gorm:"not null;index:idx_calendar_week,unique,priority:2"`
	Label      string    `json:"label"`
	StartDate  time.Time `json:"start_date" gorm:"not null"`
	EndDate    time.Time `json:"end_date" gorm:"not null"`
	IsBreak    bool      `json:"is_break" gorm:"default:false"`
}
