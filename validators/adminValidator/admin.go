package adminValidator

import (
	"lms/validators"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

type UserRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=255,nohtml"`
	Email         string `json:"email" validate:"required,email"`
	Role          string `json:"role" validate:"required,oneof=admin lecturer student"`
	InstitutionID *uint  `json:"institution_id" validate:"omitempty,min=1"`
}

type InstitutionRequest struct {
	Name string `json:"name" validate:"required,min=2,max=255,nohtml"`
}

type DegreeRequest struct {
	Name               string `json:"name" validate:"required,min=2,max=255,nohtml"`
	InstitutionID      uint   `json:"institution_id" validate:"required"`
	AcademicCalendarID *uint  `json:"academic_calendar_id" validate:"omitempty,min=1"`
}

type CourseRequest struct {
	Title         string `json:"title" validate:"required,min=3,max=255,nohtml"`
	Description   string `json:"description" validate:"max=5000"`
	InstitutionID uint   `json:"institution_id" validate:"required"`
	DegreeID      *uint  `json:"degree_id" validate:"omitempty,min=1"`
	ThumbnailURL  string `json:"thumbnail_url" validate:"omitempty,url"`
}

type WeekRequest struct {
	WeekNumber int       `json:"week_number" validate:"required,min=1"`
	Label      string    `json:"label" validate:"max=100"`
	StartDate  time.Time `json:"start_date" validate:"required"`
	EndDate    time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	IsBreak    bool      `json:"is_break"`
}

type CalendarRequest struct {
	Name  string        `json:"name" validate:"required,min=2,max=255"`
	Weeks []WeekRequest `json:"weeks" validate:"required,min=1,dive"`
}

type EnrollRequest struct {
	StudentID uint `json:"student_id" validate:"required"`
	DegreeID  uint `json:"degree_id" validate:"required"`
}

type AssignLecturerRequest struct {
	LecturerID uint `json:"lecturer_id" validate:"required"`
	CourseID   uint `json:"course_id" validate:"required"`
}

type PermissionRequest struct {
	UserID     uint   `json:"user_id" validate:"required"`
	Permission string `json:"permission" validate:"required,max=100"`
}

func CreateUser() fiber.Handler {
	return validators.Body[UserRequest]("validatedUser", func(r *UserRequest) map[string]string {
		r.Name = strings.TrimSpace(r.Name)
		r.Email = strings.ToLower(strings.TrimSpace(r.Email))
		r.Role = strings.ToLower(strings.TrimSpace(r.Role))
		return nil
	})
}

func CreateInstitution() fiber.Handler {
	return validators.Body[InstitutionRequest]("validatedInstitution", func(r *InstitutionRequest) map[string]string {
		r.Name = strings.TrimSpace(r.Name)
		return nil
	})
}

func CreateDegree() fiber.Handler {
	return validators.Body[DegreeRequest]("validatedDegree", func(r *DegreeRequest) map[string]string {
		r.Name = strings.TrimSpace(r.Name)
		return nil
	})
}

func CreateCourse() fiber.Handler {
	return validators.Body[CourseRequest]("validatedCourse", func(r *CourseRequest) map[string]string {
		r.Title = strings.TrimSpace(r.Title)
		r.Description = strings.TrimSpace(r.Description)
		r.ThumbnailURL = strings.TrimSpace(r.ThumbnailURL)
		return nil
	})
}

func CreateCalendar() fiber.Handler {
	return validators.Body[CalendarRequest]("validatedCalendar", func(r *CalendarRequest) map[string]string {
		r.Name = strings.TrimSpace(r.Name)
		return nil
	})
}

func Enroll() fiber.Handler {
	return validators.Body[EnrollRequest]("validatedEnroll", nil)
}

func AssignLecturer() fiber.Handler {
	return validators.Body[AssignLecturerRequest]("validatedAssignLecturer", nil)
}

func GrantPermission() fiber.Handler {
	return validators.Body[PermissionRequest]("validatedPermission", func(r *PermissionRequest) map[string]string {
		r.Permission = strings.ToLower(strings.TrimSpace(r.Permission))
		return nil
	})
}
