package services

import (
	"context"
	"errors"
	"fmt"
	"lms/models"

	"gorm.io/gorm"
)

// Access answers whether a caller may see or change course material.
type Access struct {
	*base
}

// IsEnrolled reports whether the student holds an enrolment in the degree the course belongs to.
// Courses outside any degree have no enrolled students.
func (a *Access) IsEnrolled(ctx context.Context, studentID, courseID uint) (bool, error) {
	var course models.Course
	if err := a.conn(ctx).Select("id", "degree_id").First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load course %d: %w", courseID, err)
	}
	if course.DegreeID == nil {
		return false, nil
	}

	var count int64
	err := a.conn(ctx).Model(&models.Enrollment{}).
		Where("student_id = ? AND degree_id = ?", studentID, *course.DegreeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count enrollments: %w", err)
	}
	return count > 0, nil
}

// IsAssigned reports whether the lecturer teaches the course.
func (a *Access) IsAssigned(ctx context.Context, lecturerID, courseID uint) (bool, error) {
	var count int64
	err := a.conn(ctx).Model(&models.CourseLecturer{}).
		Where("lecturer_id = ? AND course_id = ?", lecturerID, courseID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count course lecturers: %w", err)
	}
	return count > 0, nil
}

// CanView is the read gate used by course-scoped routes.
func (a *Access) CanView(ctx context.Context, id Identity, courseID uint) (bool, error) {
	switch id.Role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleLecturer:
		return a.IsAssigned(ctx, id.SubjectID, courseID)
	case models.RoleStudent:
		return a.IsEnrolled(ctx, id.SubjectID, courseID)
	}
	return false, nil
}

// RequireView returns Forbidden unless id may view the course.
func (a *Access) RequireView(ctx context.Context, id Identity, courseID uint) error {
	ok, err := a.CanView(ctx, id, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return Forbidden("you do not have access to this course")
	}
	return nil
}

// CourseOfLesson returns the course a lesson belongs to.
func (a *Access) CourseOfLesson(ctx context.Context, lessonID uint) (uint, error) {
	var lesson models.Lesson
	if err := a.conn(ctx).Select("id", "course_id").First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, NotFound("lesson not found")
		}
		return 0, fmt.Errorf("load lesson %d: %w", lessonID, err)
	}
	return lesson.CourseID, nil
}

// CourseOfSection returns the course a section belongs to.
func (a *Access) CourseOfSection(ctx context.Context, sectionID uint) (uint, error) {
	var courseID uint
	res := a.conn(ctx).Model(&models.Section{}).
		Select("lessons.course_id").
		Joins("JOIN lessons ON lessons.id = sections.lesson_id").
		Where("sections.id = ?", sectionID).
		Limit(1).
		Scan(&courseID)
	if res.Error != nil {
		return 0, fmt.Errorf("resolve course of section %d: %w", sectionID, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, NotFound("section not found")
	}
	return courseID, nil
}

// CourseOfQuiz returns the course of the first section that hosts the quiz.
func (a *Access) CourseOfQuiz(ctx context.Context, quizID uint) (uint, error) {
	return a.courseOfActivity(ctx, "quiz_id", quizID, "quiz")
}

// CourseOfAssignment returns the course of the section that hosts the assignment.
func (a *Access) CourseOfAssignment(ctx context.Context, assignmentID uint) (uint, error) {
	return a.courseOfActivity(ctx, "assignment_id", assignmentID, "assignment")
}

func (a *Access) courseOfActivity(ctx context.Context, column string, id uint, what string) (uint, error) {
	var courseID uint
	res := a.conn(ctx).Model(&models.Section{}).
		Select("lessons.course_id").
		Joins("JOIN lessons ON lessons.id = sections.lesson_id").
		Where("sections."+column+" = ?", id).
		Order("sections.id ASC").
		Limit(1).
		Scan(&courseID)
	if res.Error != nil {
		return 0, fmt.Errorf("resolve course of %s %d: %w", what, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, NotFound("%s is not linked to any course", what)
	}
	return courseID, nil
}

// EnrolledCourses lists the courses of every degree the student is enrolled in.
func (a *Access) EnrolledCourses(ctx context.Context, studentID uint) ([]models.Course, error) {
	var courses []models.Course
	err := a.conn(ctx).
		Joins("JOIN enrollments ON enrollments.degree_id = courses.degree_id").
		Where("enrollments.student_id = ?", studentID).
		Order("courses.id ASC").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("list enrolled courses: %w", err)
	}
	return courses, nil
}

// AssignedCourses lists the courses a lecturer teaches.
func (a *Access) AssignedCourses(ctx context.Context, lecturerID uint) ([]models.Course, error) {
	var courses []models.Course
	err := a.conn(ctx).
		Joins("JOIN course_lecturers ON course_lecturers.course_id = courses.id").
		Where("course_lecturers.lecturer_id = ?", lecturerID).
		Order("courses.id ASC").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("list assigned courses: %w", err)
	}
	return courses, nil
}

// Enroll enrols a student in a degree.
func (a *Access) Enroll(ctx context.Context, studentID, degreeID uint) (*models.Enrollment, error) {
	if err := a.requireUser(ctx, studentID, models.RoleStudent); err != nil {
		return nil, err
	}
	if err := a.conn(ctx).Select("id").First(&models.Degree{}, degreeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("degree not found")
		}
		return nil, fmt.Errorf("load degree %d: %w", degreeID, err)
	}

	enrollment := models.Enrollment{StudentID: studentID, DegreeID: degreeID}
	if err := a.conn(ctx).Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("student is already enrolled in this degree")
		}
		return nil, fmt.Errorf("create enrollment: %w", err)
	}
	return &enrollment, nil
}

// AssignLecturer adds the lecturer to the course.
func (a *Access) AssignLecturer(ctx context.Context, lecturerID, courseID uint) (*models.CourseLecturer, error) {
	if err := a.requireUser(ctx, lecturerID, models.RoleLecturer); err != nil {
		return nil, err
	}
	if err := a.conn(ctx).Select("id").First(&models.Course{}, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("course not found")
		}
		return nil, fmt.Errorf("load course %d: %w", courseID, err)
	}

	link := models.CourseLecturer{CourseID: courseID, LecturerID: lecturerID}
	if err := a.conn(ctx).Create(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("lecturer is already assigned to this course")
		}
		return nil, fmt.Errorf("assign lecturer: %w", err)
	}
	return &link, nil
}

func (a *Access) requireUser(ctx context.Context, userID uint, role string) error {
	var user models.User
	if err := a.conn(ctx).Select("id", "role").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("user not found")
		}
		return fmt.Errorf("load user %d: %w", userID, err)
	}
	if user.Role != role {
		return Invalid(map[string]string{"user_id": "user is not a " + role})
	}
	return nil
}

// HasPermission reports whether the user was granted the named permission.
func (a *Access) HasPermission(ctx context.Context, userID uint, permission string) (bool, error) {
	var count int64
	err := a.conn(ctx).Model(&models.Permission{}).
		Where("user_id = ? AND permission = ?", userID, permission).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check permission: %w", err)
	}
	return count > 0, nil
}

// GrantPermission gives an admin a named permission. Granting twice is a no-op.
func (a *Access) GrantPermission(ctx context.Context, userID uint, permission string) error {
	if err := a.requireUser(ctx, userID, models.RoleAdmin); err != nil {
		return err
	}
	grant := models.Permission{UserID: userID, Permission: permission}
	if err := a.conn(ctx).Create(&grant).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("grant permission: %w", err)
	}
	return nil
}
