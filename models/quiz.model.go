package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionShortAnswer    = "short_answer"
)

const (
	DefaultMaxAttempts          = 3
	DefaultPassingScore float64 = 50
)

type Quiz struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	LecturerID         uint       `json:"lecturer_id" gorm:"index;not null"`
	Title              string     `json:"title" gorm:"not null"`
	Description        string     `json:"description"`
	MaxAttempts        int        `json:"max_attempts" gorm:"not null"`
	PassingScore       float64    `json:"passing_score" gorm:"not null"`
	TimeLimit          *int       `json:"time_limit"` // minutes
	Deadline           *time.Time `json:"deadline"`
	RandomizeQuestions bool       `json:"randomize_questions"`
	ImmediateFeedback  bool       `json:"immediate_feedback"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type Question struct {
	ID            uint                        `json:"id" gorm:"primaryKey"`
	QuizID        uint                        `json:"quiz_id" gorm:"index;not null"`
	QuestionText  string                      `json:"question_text" gorm:"not null"`
	QuestionType  string                      `json:"question_type" gorm:"type:varchar(20);not null"`
	CorrectAnswer string                      `json:"correct_answer" gorm:"not null"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CreatedAt     time.Time                   `json:"created_at"`
}

// AnswerFeedback is the graded outcome of one question inside an attempt.
type AnswerFeedback struct {
	QuestionID      uint   `json:"question_id"`
	QuestionText    string `json:"question_text"`
	QuestionType    string `json:"question_type"`
	SubmittedAnswer string `json:"submitted_answer"`
	CorrectAnswer   string `json:"correct_answer"`
	IsCorrect       bool   `json:"is_correct"`
}

// QuizAttempt is immutable once graded. AttemptsUsed is the 1-based attempt number.
type QuizAttempt struct {
	ID            uint                                `json:"id" gorm:"primaryKey"`
	StudentID     uint                                `json:"student_id" gorm:"not null;index:idx_attempt_number,unique,priority:1"`
	QuizID        uint                                `json:"quiz_id" gorm:"not null;index:idx_attempt_number,unique,priority:2"`
	AttemptsUsed  int                                 `json:"attempts_used" gorm:"not null;index:idx_attempt_number,unique,priority:3"`
	Score         float64                             `json:"score" gorm:"default:0"`
	PassStatus    bool                                `json:"pass_status" gorm:"default:false"`
	NeedsReview   bool                                `json:"needs_review" gorm:"default:false"`
	AutoSubmitted bool                                `json:"auto_submitted" gorm:"default:false"`
	AnswersTemp   datatypes.JSONSlice[AnswerFeedback] `json:"answers_temp"`
	CompletedAt   time.Time                           `json:"completed_at" gorm:"not null"`
}
