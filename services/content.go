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

// ContentService manages lessons, sections, quizzes, questions and assignments.
type ContentService struct {
	*base
	access *Access
}

type LessonInput struct {
	Title       string
	Description string
}

type SectionInput struct {
	Title             string
	Content           models.SectionContent // nil on update keeps the current content
	CalendarWeekID    *uint                 // nil on update keeps the current week
	ClearCalendarWeek bool                  // unschedules the section on update
}

type QuizInput struct {
	Title              string
	Description        string
	MaxAttempts        *int
	PassingScore       *float64
	TimeLimit          *int
	Deadline           *time.Time
	RandomizeQuestions bool
	ImmediateFeedback  *bool
}

type QuestionInput struct {
	QuestionText  string
	QuestionType  string
	CorrectAnswer string
	Options       []string
}

type AssignmentInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	FileURL     string
}

// SectionView is a section as seen by one student.
type SectionView struct {
	models.Section
	IsActive      bool                          `json:"is_active"`
	IsCurrentWeek bool                          `json:"is_current_week"`
	IsCompleted   bool                          `json:"is_completed"`
	Submissions   []models.AssignmentSubmission `json:"submissions,omitempty"`
}

func (s *ContentService) requireEditor(ctx context.Context, id Identity, courseID uint) error {
	if id.IsAdmin() {
		return nil
	}
	if id.IsLecturer() {
		ok, err := s.access.IsAssigned(ctx, id.SubjectID, courseID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return Forbidden("you are not assigned to this course")
}

func requireOwner(id Identity, lecturerID uint, what string) error {
	if id.IsAdmin() || (id.IsLecturer() && id.SubjectID == lecturerID) {
		return nil
	}
	return Forbidden("you do not own this %s", what)
}

// Lessons lists a course's lessons in creation order.
func (s *ContentService) Lessons(ctx context.Context, courseID uint) ([]models.Lesson, error) {
	lessons := []models.Lesson{}
	if err := s.conn(ctx).Where("course_id = ?", courseID).Order("id ASC").Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

func (s *ContentService) CreateLesson(ctx context.Context, id Identity, courseID uint, in LessonInput) (*models.Lesson, error) {
	if err := s.requireEditor(ctx, id, courseID); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, Invalid(map[string]string{"title": "title is required"})
	}

	lesson := models.Lesson{CourseID: courseID, Title: in.Title, Description: strings.TrimSpace(in.Description)}
	if err := s.conn(ctx).Create(&lesson).Error; err != nil {
		return nil, fmt.Errorf("create lesson: %w", err)
	}
	return &lesson, nil
}

// LessonSections returns the lesson's sections in order, annotated for the student.
func (s *ContentService) LessonSections(ctx context.Context, studentID, lessonID uint) ([]SectionView, error) {
	db := s.conn(ctx)

	var sections []models.Section
	if err := db.Where("lesson_id = ?", lessonID).Order("order_index ASC, id ASC").Find(&sections).Error; err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}

	weekIDs := []uint{}
	sectionIDs := make([]uint, 0, len(sections))
	assignmentIDs := []uint{}
	for _, sec := range sections {
		sectionIDs = append(sectionIDs, sec.ID)
		if sec.CalendarWeekID != nil {
			weekIDs = append(weekIDs, *sec.CalendarWeekID)
		}
		if sec.AssignmentID != nil {
			assignmentIDs = append(assignmentIDs, *sec.AssignmentID)
		}
	}

	weeks := map[uint]*models.CalendarWeek{}
	if len(weekIDs) > 0 {
		var rows []models.CalendarWeek
		if err := db.Where("id IN ?", weekIDs).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load calendar weeks: %w", err)
		}
		for i := range rows {
			weeks[rows[i].ID] = &rows[i]
		}
	}

	completed := map[uint]bool{}
	if len(sectionIDs) > 0 {
		var done []uint
		if err := db.Model(&models.SectionProgress{}).
			Where("student_id = ? AND section_id IN ?", studentID, sectionIDs).
			Pluck("section_id", &done).Error; err != nil {
			return nil, fmt.Errorf("load section progress: %w", err)
		}
		for _, id := range done {
			completed[id] = true
		}
	}

	submissions := map[uint][]models.AssignmentSubmission{}
	if len(assignmentIDs) > 0 {
		var rows []models.AssignmentSubmission
		if err := db.Where("student_id = ? AND assignment_id IN ?", studentID, assignmentIDs).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load submissions: %w", err)
		}
		for _, r := range rows {
			submissions[r.AssignmentID] = append(submissions[r.AssignmentID], r)
		}
	}

	at := s.now()
	views := make([]SectionView, len(sections))
	for i, sec := range sections {
		var week *models.CalendarWeek
		if sec.CalendarWeekID != nil {
			week = weeks[*sec.CalendarWeekID]
		}
		views[i] = SectionView{
			Section:       sec,
			IsActive:      sectionActive(week, at),
			IsCurrentWeek: sectionCurrentWeek(week, at),
			IsCompleted:   completed[sec.ID],
		}
		if sec.AssignmentID != nil {
			views[i].Submissions = submissions[*sec.AssignmentID]
		}
	}
	return views, nil
}

// CreateSection appends a section to the lesson.
func (s *ContentService) CreateSection(ctx context.Context, id Identity, lessonID uint, in SectionInput) (*models.Section, error) {
	courseID, err := s.access.CourseOfLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEditor(ctx, id, courseID); err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	fields := map[string]string{}
	if in.Title == "" {
		fields["title"] = "title is required"
	}
	if in.Content == nil {
		fields["content_type"] = "content is required"
	}
	if len(fields) > 0 {
		return nil, Invalid(fields)
	}
	if err := s.checkContent(ctx, id, in.Content); err != nil {
		return nil, err
	}
	if err := s.checkWeek(ctx, in.CalendarWeekID); err != nil {
		return nil, err
	}

	section := models.Section{LessonID: lessonID, Title: in.Title, CalendarWeekID: in.CalendarWeekID}
	section.SetContent(in.Content)

	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		if err := tx.Model(&models.Section{}).
			Select("COALESCE(MAX(order_index), 0) + 1").
			Where("lesson_id = ?", lessonID).
			Scan(&next).Error; err != nil {
			return err
		}
		section.Order = next
		return tx.Create(&section).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create section: %w", err)
	}
	return &section, nil
}

// UpdateSection renames, reschedules or swaps the content of a section.
func (s *ContentService) UpdateSection(ctx context.Context, id Identity, sectionID uint, in SectionInput) (*models.Section, error) {
	section, err := s.editableSection(ctx, id, sectionID)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		section.Title = title
	}
	if in.Content != nil {
		if err := s.checkContent(ctx, id, in.Content); err != nil {
			return nil, err
		}
		section.SetContent(in.Content)
	}
	switch {
	case in.ClearCalendarWeek:
		section.CalendarWeekID = nil
	case in.CalendarWeekID != nil:
		if err := s.checkWeek(ctx, in.CalendarWeekID); err != nil {
			return nil, err
		}
		section.CalendarWeekID = in.CalendarWeekID
	}

	if err := s.conn(ctx).Save(section).Error; err != nil {
		return nil, fmt.Errorf("update section %d: %w", sectionID, err)
	}
	return section, nil
}

// DeleteSection removes the section together with everyone's completion of it.
func (s *ContentService) DeleteSection(ctx context.Context, id Identity, sectionID uint) error {
	section, err := s.editableSection(ctx, id, sectionID)
	if err != nil {
		return err
	}

	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("section_id = ?", section.ID).Delete(&models.SectionProgress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Section{}, section.ID).Error
	})
	if err != nil {
		return fmt.Errorf("delete section %d: %w", sectionID, err)
	}
	return nil
}

func (s *ContentService) editableSection(ctx context.Context, id Identity, sectionID uint) (*models.Section, error) {
	var section models.Section
	if err := s.conn(ctx).First(&section, sectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("section not found")
		}
		return nil, fmt.Errorf("load section %d: %w", sectionID, err)
	}
	courseID, err := s.access.CourseOfLesson(ctx, section.LessonID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEditor(ctx, id, courseID); err != nil {
		return nil, err
	}
	return &section, nil
}

// checkContent verifies referenced quizzes and assignments exist and belong to the caller.
func (s *ContentService) checkContent(ctx context.Context, id Identity, content models.SectionContent) error {
	db := s.conn(ctx)
	switch c := content.(type) {
	case models.TextContent:
		if strings.TrimSpace(c.Text) == "" {
			return Invalid(map[string]string{"text_content": "text content is required"})
		}
	case models.FileContent:
		if strings.TrimSpace(c.URL) == "" {
			return Invalid(map[string]string{"file_url": "file url is required"})
		}
	case models.QuizContent:
		var quiz models.Quiz
		if err := db.Select("id", "lecturer_id").First(&quiz, c.QuizID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("quiz not found")
			}
			return fmt.Errorf("load quiz %d: %w", c.QuizID, err)
		}
		return requireOwner(id, quiz.LecturerID, "quiz")
	case models.AssignmentContent:
		var assignment models.Assignment
		if err := db.Select("id", "lecturer_id").First(&assignment, c.AssignmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("assignment not found")
			}
			return fmt.Errorf("load assignment %d: %w", c.AssignmentID, err)
		}
		return requireOwner(id, assignment.LecturerID, "assignment")
	}
	return nil
}

func (s *ContentService) checkWeek(ctx context.Context, weekID *uint) error {
	if weekID == nil {
		return nil
	}
	if err := s.conn(ctx).Select("id").First(&models.CalendarWeek{}, *weekID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Invalid(map[string]string{"calendar_week_id": "calendar week not found"})
		}
		return fmt.Errorf("load calendar week %d: %w", *weekID, err)
	}
	return nil
}

func validateQuiz(in QuizInput) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "title is required"
	}
	if in.MaxAttempts != nil && *in.MaxAttempts < 1 {
		fields["max_attempts"] = "max attempts must be at least 1"
	}
	if in.PassingScore != nil && (*in.PassingScore < 0 || *in.PassingScore > 100) {
		fields["passing_score"] = "passing score must be between 0 and 100"
	}
	if in.TimeLimit != nil && *in.TimeLimit < 1 {
		fields["time_limit"] = "time limit must be at least 1 minute"
	}
	return fields
}

// CreateQuiz creates a quiz owned by the calling lecturer.
func (s *ContentService) CreateQuiz(ctx context.Context, id Identity, in QuizInput) (*models.Quiz, error) {
	if !id.IsLecturer() && !id.IsAdmin() {
		return nil, Forbidden("only lecturers can create quizzes")
	}
	if fields := validateQuiz(in); len(fields) > 0 {
		return nil, Invalid(fields)
	}

	quiz := models.Quiz{
		LecturerID:         id.SubjectID,
		Title:              strings.TrimSpace(in.Title),
		Description:        strings.TrimSpace(in.Description),
		MaxAttempts:        models.DefaultMaxAttempts,
		PassingScore:       models.DefaultPassingScore,
		TimeLimit:          in.TimeLimit,
		Deadline:           in.Deadline,
		RandomizeQuestions: in.RandomizeQuestions,
		ImmediateFeedback:  true,
	}
	applyQuizLimits(&quiz, in)

	if err := s.conn(ctx).Create(&quiz).Error; err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return &quiz, nil
}

func applyQuizLimits(quiz *models.Quiz, in QuizInput) {
	if in.MaxAttempts != nil {
		quiz.MaxAttempts = *in.MaxAttempts
	}
	if in.PassingScore != nil {
		quiz.PassingScore = *in.PassingScore
	}
	if in.ImmediateFeedback != nil {
		quiz.ImmediateFeedback = *in.ImmediateFeedback
	}
}

// UpdateQuiz replaces the quiz settings. Past attempts keep their grades.
func (s *ContentService) UpdateQuiz(ctx context.Context, id Identity, quizID uint, in QuizInput) (*models.Quiz, error) {
	quiz, err := s.ownedQuiz(ctx, id, quizID)
	if err != nil {
		return nil, err
	}
	if fields := validateQuiz(in); len(fields) > 0 {
		return nil, Invalid(fields)
	}

	quiz.Title = strings.TrimSpace(in.Title)
	quiz.Description = strings.TrimSpace(in.Description)
	quiz.TimeLimit = in.TimeLimit
	quiz.Deadline = in.Deadline
	quiz.RandomizeQuestions = in.RandomizeQuestions
	applyQuizLimits(quiz, in)

	if err := s.conn(ctx).Save(quiz).Error; err != nil {
		return nil, fmt.Errorf("update quiz %d: %w", quizID, err)
	}
	return quiz, nil
}

// Quiz returns a quiz with its questions, answers included, for its owner.
func (s *ContentService) Quiz(ctx context.Context, id Identity, quizID uint) (*models.Quiz, []models.Question, error) {
	quiz, err := s.ownedQuiz(ctx, id, quizID)
	if err != nil {
		return nil, nil, err
	}
	questions := []models.Question{}
	if err := s.conn(ctx).Where("quiz_id = ?", quizID).Order("id ASC").Find(&questions).Error; err != nil {
		return nil, nil, fmt.Errorf("list questions: %w", err)
	}
	return quiz, questions, nil
}

func (s *ContentService) ownedQuiz(ctx context.Context, id Identity, quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := s.conn(ctx).First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("quiz not found")
		}
		return nil, fmt.Errorf("load quiz %d: %w", quizID, err)
	}
	if err := requireOwner(id, quiz.LecturerID, "quiz"); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// ValidateQuestion returns per-field problems with a question, or nil.
func ValidateQuestion(in QuestionInput) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(in.QuestionText) == "" {
		fields["question_text"] = "question text is required"
	}
	if strings.TrimSpace(in.CorrectAnswer) == "" {
		fields["correct_answer"] = "correct answer is required"
	}

	switch in.QuestionType {
	case models.QuestionMultipleChoice:
		options := 0
		matched := false
		for _, opt := range in.Options {
			if strings.TrimSpace(opt) == "" {
				continue
			}
			options++
			if normalizeAnswer(opt) == normalizeAnswer(in.CorrectAnswer) {
				matched = true
			}
		}
		if options < 2 {
			fields["options"] = "multiple choice questions need at least 2 options"
		} else if _, missing := fields["correct_answer"]; !missing && !matched {
			fields["correct_answer"] = "correct answer must be one of the options"
		}
	case models.QuestionShortAnswer:
		if len(in.Options) > 0 {
			fields["options"] = "short answer questions take no options"
		}
	default:
		fields["question_type"] = "question type must be multiple_choice or short_answer"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func questionFromInput(in QuestionInput) models.Question {
	q := models.Question{
		QuestionText:  strings.TrimSpace(in.QuestionText),
		QuestionType:  in.QuestionType,
		CorrectAnswer: strings.TrimSpace(in.CorrectAnswer),
	}
	if in.QuestionType == models.QuestionMultipleChoice {
		for _, opt := range in.Options {
			if opt = strings.TrimSpace(opt); opt != "" {
				q.Options = append(q.Options, opt)
			}
		}
	}
	return q
}

func (s *ContentService) AddQuestion(ctx context.Context, id Identity, quizID uint, in QuestionInput) (*models.Question, error) {
	if _, err := s.ownedQuiz(ctx, id, quizID); err != nil {
		return nil, err
	}
	if fields := ValidateQuestion(in); fields != nil {
		return nil, Invalid(fields)
	}

	question := questionFromInput(in)
	question.QuizID = quizID
	if err := s.conn(ctx).Create(&question).Error; err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return &question, nil
}

func (s *ContentService) UpdateQuestion(ctx context.Context, id Identity, questionID uint, in QuestionInput) (*models.Question, error) {
	existing, err := s.ownedQuestion(ctx, id, questionID)
	if err != nil {
		return nil, err
	}
	if fields := ValidateQuestion(in); fields != nil {
		return nil, Invalid(fields)
	}

	question := questionFromInput(in)
	question.ID = existing.ID
	question.QuizID = existing.QuizID
	question.CreatedAt = existing.CreatedAt
	if err := s.conn(ctx).Save(&question).Error; err != nil {
		return nil, fmt.Errorf("update question %d: %w", questionID, err)
	}
	return &question, nil
}

func (s *ContentService) DeleteQuestion(ctx context.Context, id Identity, questionID uint) error {
	question, err := s.ownedQuestion(ctx, id, questionID)
	if err != nil {
		return err
	}
	if err := s.conn(ctx).Delete(&models.Question{}, question.ID).Error; err != nil {
		return fmt.Errorf("delete question %d: %w", questionID, err)
	}
	return nil
}

func (s *ContentService) ownedQuestion(ctx context.Context, id Identity, questionID uint) (*models.Question, error) {
	var question models.Question
	if err := s.conn(ctx).First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("question not found")
		}
		return nil, fmt.Errorf("load question %d: %w", questionID, err)
	}
	if _, err := s.ownedQuiz(ctx, id, question.QuizID); err != nil {
		return nil, err
	}
	return &question, nil
}

// CreateAssignment creates an assignment owned by the calling lecturer.
func (s *ContentService) CreateAssignment(ctx context.Context, id Identity, in AssignmentInput) (*models.Assignment, error) {
	if !id.IsLecturer() && !id.IsAdmin() {
		return nil, Forbidden("only lecturers can create assignments")
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, Invalid(map[string]string{"title": "title is required"})
	}

	assignment := models.Assignment{
		LecturerID:  id.SubjectID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		DueDate:     in.DueDate,
		FileURL:     in.FileURL,
	}
	if err := s.conn(ctx).Create(&assignment).Error; err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}
	return &assignment, nil
}
