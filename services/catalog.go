package services

import (
	"context"
	"errors"
	"fmt"
	"lms/models"
	"strings"
	"time"

	"gorm.io/gorm"
)

type WeekInput struct {
	WeekNumber int
	Label      string
	StartDate  time.Time
	EndDate    time.Time
	IsBreak    bool
}

// CreateUser registers an identity. Credentials are managed elsewhere.
func (a *Access) CreateUser(ctx context.Context, name, email, role string, institutionID *uint) (*models.User, error) {
	fields := map[string]string{}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		fields["email"] = "email is required"
	}
	switch role {
	case models.RoleAdmin, models.RoleLecturer, models.RoleStudent:
	default:
		fields["role"] = "role must be admin, lecturer or student"
	}
	if len(fields) > 0 {
		return nil, Invalid(fields)
	}

	user := models.User{Name: strings.TrimSpace(name), Email: email, Role: role, InstitutionID: institutionID}
	if err := a.conn(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("a user with this email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (a *Access) CreateInstitution(ctx context.Context, name string) (*models.Institution, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Invalid(map[string]string{"name": "name is required"})
	}
	inst := models.Institution{Name: name}
	if err := a.conn(ctx).Create(&inst).Error; err != nil {
		return nil, fmt.Errorf("create institution: %w", err)
	}
	return &inst, nil
}

func (a *Access) CreateDegree(ctx context.Context, name string, institutionID uint, calendarID *uint) (*models.Degree, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Invalid(map[string]string{"name": "name is required"})
	}
	if err := a.exists(ctx, &models.Institution{}, institutionID, "institution"); err != nil {
		return nil, err
	}
	if calendarID != nil {
		if err := a.exists(ctx, &models.AcademicCalendar{}, *calendarID, "academic calendar"); err != nil {
			return nil, err
		}
	}

	degree := models.Degree{Name: name, InstitutionID: institutionID, AcademicCalendarID: calendarID}
	if err := a.conn(ctx).Create(&degree).Error; err != nil {
		return nil, fmt.Errorf("create degree: %w", err)
	}
	return &degree, nil
}

func (a *Access) CreateCourse(ctx context.Context, course models.Course) (*models.Course, error) {
	course.Title = strings.TrimSpace(course.Title)
	if course.Title == "" {
		return nil, Invalid(map[string]string{"title": "title is required"})
	}
	if err := a.exists(ctx, &models.Institution{}, course.InstitutionID, "institution"); err != nil {
		return nil, err
	}
	if course.DegreeID != nil {
		if err := a.exists(ctx, &models.Degree{}, *course.DegreeID, "degree"); err != nil {
			return nil, err
		}
	}

	course.ID = 0
	if err := a.conn(ctx).Create(&course).Error; err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return &course, nil
}

// CreateCalendar stores a calendar and its weeks in one transaction.
func (a *Access) CreateCalendar(ctx context.Context, name string, weeks []WeekInput) (*models.AcademicCalendar, []models.CalendarWeek, error) {
	fields := map[string]string{}
	if strings.TrimSpace(name) == "" {
		fields["name"] = "name is required"
	}
	if len(weeks) == 0 {
		fields["weeks"] = "at least one week is required"
	}
	seen := map[int]bool{}
	for i, w := range weeks {
		key := fmt.Sprintf("weeks[%d]", i)
		switch {
		case w.WeekNumber < 1:
			fields[key] = "week number must be at least 1"
		case seen[w.WeekNumber]:
			fields[key] = "duplicate week number"
		case w.EndDate.Before(w.StartDate):
			fields[key] = "end date is before start date"
		}
		seen[w.WeekNumber] = true
	}
	if len(fields) > 0 {
		return nil, nil, Invalid(fields)
	}

	calendar := models.AcademicCalendar{Name: strings.TrimSpace(name), StartDate: weeks[0].StartDate, EndDate: weeks[0].EndDate}
	for _, w := range weeks {
		if w.StartDate.Before(calendar.StartDate) {
			calendar.StartDate = w.StartDate
		}
		if w.EndDate.After(calendar.EndDate) {
			calendar.EndDate = w.EndDate
		}
	}

	rows := make([]models.CalendarWeek, len(weeks))
	err := a.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&calendar).Error; err != nil {
			return err
		}
		for i, w := range weeks {
			rows[i] = models.CalendarWeek{
				CalendarID: calendar.ID,
				WeekNumber: w.WeekNumber,
				Label:      strings.TrimSpace(w.Label),
				StartDate:  w.StartDate.UTC(),
				EndDate:    w.EndDate.UTC(),
				IsBreak:    w.IsBreak,
			}
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create calendar: %w", err)
	}
	return &calendar, rows, nil
}

func (a *Access) exists(ctx context.Context, model interface{}, id uint, what string) error {
	if err := a.conn(ctx).Select("id").First(model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("%s not found", what)
		}
		return fmt.Errorf("load %s %d: %w", what, id, err)
	}
	return nil
}
