package models

import "time"

const (
	RoleAdmin    = "admin"
	RoleLecturer = "lecturer"
	RoleStudent  = "student"
)

// Admin permissions checked by the admin routes.
const (
	PermissionManageCatalog     = "manage-catalog"
	PermissionManageEnrollments = "manage-enrollments"
	PermissionManageBadges      = "manage-badges"
	PermissionManagePermissions = "manage-permissions"
)

// User is an identity record. Authentication lives outside this service.
type User struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"default:''"`
	Email         string    `json:"email" gorm:"unique;not null"`
	Role          string    `json:"role" gorm:"type:varchar(20);not null;index"`
	InstitutionID *uint     `json:"institution_id" gorm:"index"`
	CreatedAt     time.Time `json:"created_at"`
}

// Permission grants an admin a named capability, e.g. "manage-enrollments".
type Permission struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;index:idx_permission_user,unique,priority:1"`
	Permission string    `json:"permission" gorm:"type:varchar(255);not null;index:idx_permission_user,unique,priority:2"`
	CreatedAt  time.Time `json:"created_at"`
}
