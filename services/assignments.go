package services

import (
	"context"
	"errors"
	"fmt"
	"lms/models"

	"gorm.io/gorm"
)

// AssignmentService stores student submissions.
type AssignmentService struct {
	*base
	progress *ProgressTracker
	badges   *BadgeEvaluator
}

type SubmissionResult struct {
	Submission models.AssignmentSubmission `json:"submission"`
	// ReplacedFileURL is the file of the submission this one replaced, for the
	// caller to remove from storage.
	ReplacedFileURL string         `json:"-"`
	NewBadges       []models.Badge `json:"new_badges"`
}

func (s *AssignmentService) Assignment(ctx context.Context, assignmentID uint) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := s.conn(ctx).First(&assignment, assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("assignment not found")
		}
		return nil, fmt.Errorf("load assignment %d: %w", assignmentID, err)
	}
	return &assignment, nil
}

// Submit records fileURL as the student's submission, replacing any previous one,
// then completes the assignment's section.
func (s *AssignmentService) Submit(ctx context.Context, studentID, assignmentID uint, fileURL, originalName string) (*SubmissionResult, error) {
	if _, err := s.Assignment(ctx, assignmentID); err != nil {
		return nil, err
	}

	var linked int64
	if err := s.conn(ctx).Model(&models.Section{}).Where("assignment_id = ?", assignmentID).Count(&linked).Error; err != nil {
		return nil, fmt.Errorf("check assignment section: %w", err)
	}
	if linked == 0 {
		return nil, Invalid(map[string]string{"assignment_id": "assignment is not linked to any section"})
	}

	result := &SubmissionResult{}
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var previous models.AssignmentSubmission
		err := tx.Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).First(&previous).Error
		switch {
		case err == nil:
			result.ReplacedFileURL = previous.FileURL
			if err := tx.Delete(&previous).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		result.Submission = models.AssignmentSubmission{
			AssignmentID:     assignmentID,
			StudentID:        studentID,
			FileURL:          fileURL,
			OriginalFileName: originalName,
			SubmittedAt:      s.now(),
		}
		return tx.Create(&result.Submission).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("a submission for this assignment is already being saved")
		}
		return nil, fmt.Errorf("save submission: %w", err)
	}

	courseID, err := s.progress.AutoCompleteAssignment(ctx, studentID, assignmentID)
	if err != nil {
		return nil, err
	}
	if result.NewBadges, err = s.badges.Evaluate(ctx, studentID, courseID); err != nil {
		return nil, err
	}
	return result, nil
}

// Submissions lists the student's submissions for an assignment.
func (s *AssignmentService) Submissions(ctx context.Context, studentID, assignmentID uint) ([]models.AssignmentSubmission, error) {
	submissions := []models.AssignmentSubmission{}
	err := s.conn(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}

// AllSubmissions lists every student's submission for an assignment, for its lecturer.
func (s *AssignmentService) AllSubmissions(ctx context.Context, id Identity, assignmentID uint) ([]models.AssignmentSubmission, error) {
	assignment, err := s.Assignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(id, assignment.LecturerID, "assignment"); err != nil {
		return nil, err
	}

	submissions := []models.AssignmentSubmission{}
	if err := s.conn(ctx).Where("assignment_id = ?", assignmentID).Order("submitted_at ASC").Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}

// DeleteSubmission withdraws a student's own submission and returns its file url.
// Section completion is kept.
func (s *AssignmentService) DeleteSubmission(ctx context.Context, studentID, submissionID uint) (string, error) {
	var submission models.AssignmentSubmission
	if err := s.conn(ctx).First(&submission, submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", NotFound("submission not found")
		}
		return "", fmt.Errorf("load submission %d: %w", submissionID, err)
	}
	if submission.StudentID != studentID {
		return "", Forbidden("this submission belongs to another student")
	}
	if err := s.conn(ctx).Delete(&submission).Error; err != nil {
		return "", fmt.Errorf("delete submission %d: %w", submissionID, err)
	}
	return submission.FileURL, nil
}
