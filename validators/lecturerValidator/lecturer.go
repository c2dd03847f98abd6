package lecturerValidator

import (
	"lms/models"
	"lms/validators"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

type LessonRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=255,nohtml"`
	Description string `json:"description" validate:"max=2000"`
}

// SectionRequest carries one content variant. On update an empty
// content_type keeps the current content.
type SectionRequest struct {
	Title             string `json:"title" validate:"required,min=1,max=255,nohtml"`
	ContentType       string `json:"content_type" validate:"omitempty,oneof=text file quiz assignment"`
	TextContent       string `json:"text_content" validate:"required_if=ContentType text"`
	FileURL           string `json:"file_url" validate:"required_if=ContentType file,max=2048"`
	QuizID            uint   `json:"quiz_id" validate:"required_if=ContentType quiz"`
	AssignmentID      uint   `json:"assignment_id" validate:"required_if=ContentType assignment"`
	CalendarWeekID    *uint  `json:"calendar_week_id" validate:"omitempty,min=1"`
	ClearCalendarWeek bool   `json:"clear_calendar_week" validate:"excluded_with=CalendarWeekID"`
}

// Content returns the selected variant, or nil when no content type was sent.
func (r *SectionRequest) Content() models.SectionContent {
	switch models.ContentType(r.ContentType) {
	case models.ContentText:
		return models.TextContent{Text: r.TextContent}
	case models.ContentFile:
		return models.FileContent{URL: strings.TrimSpace(r.FileURL)}
	case models.ContentQuiz:
		return models.QuizContent{QuizID: r.QuizID}
	case models.ContentAssignment:
		return models.AssignmentContent{AssignmentID: r.AssignmentID}
	}
	return nil
}

type QuizRequest struct {
	Title              string     `json:"title" validate:"required,min=3,max=255,nohtml"`
	Description        string     `json:"description" validate:"max=2000"`
	MaxAttempts        *int       `json:"max_attempts" validate:"omitempty,min=1,max=100"`
	PassingScore       *float64   `json:"passing_score" validate:"omitempty,min=0,max=100"`
	TimeLimit          *int       `json:"time_limit" validate:"omitempty,min=1"`
	Deadline           *time.Time `json:"deadline"`
	RandomizeQuestions bool       `json:"randomize_questions"`
	ImmediateFeedback  *bool      `json:"immediate_feedback"`
}

// QuestionRequest only checks shape; option/answer consistency is checked by
// the content service.
type QuestionRequest struct {
	QuestionText  string   `json:"question_text" validate:"required,max=2000"`
	QuestionType  string   `json:"question_type" validate:"required,oneof=multiple_choice short_answer"`
	CorrectAnswer string   `json:"correct_answer" validate:"required,max=1000"`
	Options       []string `json:"options" validate:"omitempty,max=20,dive,max=500"`
}

type AssignmentRequest struct {
	Title       string     `json:"title" validate:"required,min=3,max=255,nohtml"`
	Description string     `json:"description" validate:"max=5000"`
	DueDate     *time.Time `json:"due_date"`
	FileURL     string     `json:"file_url" validate:"omitempty,url"`
}

func CreateLesson() fiber.Handler {
	return validators.Body[LessonRequest]("validatedLesson", func(r *LessonRequest) map[string]string {
		r.Title = strings.TrimSpace(r.Title)
		r.Description = strings.TrimSpace(r.Description)
		return nil
	})
}

func prepareSection(r *SectionRequest) map[string]string {
	r.Title = strings.TrimSpace(r.Title)
	r.ContentType = strings.ToLower(strings.TrimSpace(r.ContentType))
	r.FileURL = strings.TrimSpace(r.FileURL)
	return nil
}

// UpdateSection accepts a request without content_type.
func UpdateSection() fiber.Handler {
	return validators.Body[SectionRequest]("validatedSection", prepareSection)
}

func CreateSection() fiber.Handler {
	return validators.Body[SectionRequest]("validatedSection", func(r *SectionRequest) map[string]string {
		prepareSection(r)
		if r.ContentType == "" {
			return map[string]string{"content_type": "content_type is required!"}
		}
		return nil
	})
}

func Quiz() fiber.Handler {
	return validators.Body[QuizRequest]("validatedQuiz", func(r *QuizRequest) map[string]string {
		r.Title = strings.TrimSpace(r.Title)
		r.Description = strings.TrimSpace(r.Description)
		return nil
	})
}

func Question() fiber.Handler {
	return validators.Body[QuestionRequest]("validatedQuestion", func(r *QuestionRequest) map[string]string {
		r.QuestionText = strings.TrimSpace(r.QuestionText)
		r.QuestionType = strings.ToLower(strings.TrimSpace(r.QuestionType))
		return nil
	})
}

func CreateAssignment() fiber.Handler {
	return validators.Body[AssignmentRequest]("validatedAssignment", func(r *AssignmentRequest) map[string]string {
		r.Title = strings.TrimSpace(r.Title)
		r.FileURL = strings.TrimSpace(r.FileURL)
		return nil
	})
}

var (
	CourseID     = validators.IDParam("courseId")
	LessonID     = validators.IDParam("lessonId")
	SectionID    = validators.IDParam("sectionId")
	QuizID       = validators.IDParam("quizId")
	QuestionID   = validators.IDParam("questionId")
	AssignmentID = validators.IDParam("assignmentId")
)
