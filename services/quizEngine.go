package services

import (
	"context"
	"errors"
	"fmt"
	"lms/config"
	"lms/models"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// QuizEngine runs quiz attempts: it counts attempts, grades answers and records results.
type QuizEngine struct {
	*base
	progress *ProgressTracker
	badges   *BadgeEvaluator
}

// QuestionView is a question as shown to a student, without its answer.
type QuestionView struct {
	ID           uint     `json:"id"`
	QuestionText string   `json:"question_text"`
	QuestionType string   `json:"question_type"`
	Options      []string `json:"options,omitempty"`
}

type QuizView struct {
	QuizID         uint           `json:"quiz_id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	MaxAttempts    int            `json:"max_attempts"`
	AttemptsLeft   int            `json:"attempts_left"`
	TimeLimit      *int           `json:"time_limit"`
	PassingScore   float64        `json:"passing_score"`
	TotalQuestions int            `json:"total_questions"`
	Deadline       *time.Time     `json:"deadline"`
	AttemptID      *uint          `json:"attempt_id,omitempty"`
	Questions      []QuestionView `json:"questions,omitempty"`
}

type SubmitResult struct {
	AttemptID      uint                    `json:"attempt_id"`
	Score          float64                 `json:"score"`
	Passed         bool                    `json:"passed"`
	NeedsReview    bool                    `json:"needs_review"`
	AutoSubmitted  bool                    `json:"auto_submitted"`
	TotalQuestions int                     `json:"total_questions"`
	AttemptsUsed   int                     `json:"attempts_used"`
	AttemptsLeft   int                     `json:"attempts_left"`
	Feedback       []models.AnswerFeedback `json:"feedback"`
	NewBadges      []models.Badge          `json:"new_badges"`
}

type AttemptResult struct {
	Attempt      models.QuizAttempt `json:"attempt"`
	AttemptsLeft int                `json:"attempts_left"`
	PassingScore float64            `json:"passing_score"`
}

func (q *QuizEngine) loadQuiz(ctx context.Context, quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.conn(ctx).First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("quiz not found")
		}
		return nil, fmt.Errorf("load quiz %d: %w", quizID, err)
	}
	return &quiz, nil
}

func (q *QuizEngine) questions(db *gorm.DB, quizID uint) ([]models.Question, error) {
	var questions []models.Question
	if err := db.Where("quiz_id = ?", quizID).Order("id ASC").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("load questions of quiz %d: %w", quizID, err)
	}
	return questions, nil
}

func (q *QuizEngine) attemptCount(db *gorm.DB, studentID, quizID uint) (int, error) {
	var n int64
	if err := db.Model(&models.QuizAttempt{}).
		Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return int(n), nil
}

func attemptsLeft(quiz *models.Quiz, used int) int {
	if left := quiz.MaxAttempts - used; left > 0 {
		return left
	}
	return 0
}

// Start describes the quiz before an attempt. It never creates an attempt.
func (q *QuizEngine) Start(ctx context.Context, studentID, quizID uint) (*QuizView, error) {
	quiz, err := q.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return q.view(q.conn(ctx), studentID, quiz)
}

// Details is Start plus the latest attempt id and the questions to answer.
func (q *QuizEngine) Details(ctx context.Context, studentID, quizID uint) (*QuizView, error) {
	quiz, err := q.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	db := q.conn(ctx)
	view, err := q.view(db, studentID, quiz)
	if err != nil {
		return nil, err
	}

	var latest models.QuizAttempt
	err = db.Select("id").
		Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		Order("completed_at DESC, id DESC").
		First(&latest).Error
	switch {
	case err == nil:
		view.AttemptID = &latest.ID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("load latest attempt: %w", err)
	}

	questions, err := q.questions(db, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.RandomizeQuestions {
		q.opts.Shuffle(questions)
	}

	view.Questions = make([]QuestionView, len(questions))
	for i, question := range questions {
		view.Questions[i] = QuestionView{
			ID:           question.ID,
			QuestionText: question.QuestionText,
			QuestionType: question.QuestionType,
			Options:      question.Options,
		}
	}
	return view, nil
}

func (q *QuizEngine) view(db *gorm.DB, studentID uint, quiz *models.Quiz) (*QuizView, error) {
	var total int64
	if err := db.Model(&models.Question{}).Where("quiz_id = ?", quiz.ID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	used, err := q.attemptCount(db, studentID, quiz.ID)
	if err != nil {
		return nil, err
	}

	return &QuizView{
		QuizID:         quiz.ID,
		Title:          quiz.Title,
		Description:    quiz.Description,
		MaxAttempts:    quiz.MaxAttempts,
		AttemptsLeft:   attemptsLeft(quiz, used),
		TimeLimit:      quiz.TimeLimit,
		PassingScore:   quiz.PassingScore,
		TotalQuestions: int(total),
		Deadline:       quiz.Deadline,
	}, nil
}

// Submit grades a student's answers as a new attempt.
func (q *QuizEngine) Submit(ctx context.Context, studentID, quizID uint, answers map[string]string) (*SubmitResult, error) {
	return q.submit(ctx, studentID, quizID, answers, false)
}

// AutoSubmit grades whatever the client held when the timer ran out. Grading is
// identical to Submit; the attempt is flagged auto_submitted.
func (q *QuizEngine) AutoSubmit(ctx context.Context, studentID, quizID uint, answers map[string]string) (*SubmitResult, error) {
	return q.submit(ctx, studentID, quizID, answers, true)
}

func (q *QuizEngine) submit(ctx context.Context, studentID, quizID uint, answers map[string]string, auto bool) (*SubmitResult, error) {
	log := config.WithContext(ctx).WithFields(logrus.Fields{"student_id": studentID, "quiz_id": quizID})

	quiz, err := q.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	attempt, err := q.createAttempt(ctx, studentID, quiz, auto)
	if err != nil {
		return nil, err
	}

	questions, err := q.questions(q.conn(ctx), quizID)
	if err != nil {
		return nil, err
	}
	grade := Grade(questions, answers)

	attempt.Score = grade.Score
	attempt.PassStatus = grade.Score >= quiz.PassingScore
	attempt.NeedsReview = grade.NeedsReview
	attempt.AnswersTemp = grade.Feedback
	if err := q.conn(ctx).Model(attempt).Select("score", "pass_status", "needs_review", "answers_temp").Updates(attempt).Error; err != nil {
		return nil, fmt.Errorf("save graded attempt %d: %w", attempt.ID, err)
	}
	log.WithFields(logrus.Fields{"attempt": attempt.AttemptsUsed, "score": attempt.Score, "auto": auto}).Info("Quiz attempt graded")

	courseID, err := q.progress.AutoCompleteQuiz(ctx, studentID, quizID)
	if err != nil {
		return nil, err
	}
	badges, err := q.badges.Evaluate(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	result := &SubmitResult{
		AttemptID:      attempt.ID,
		Score:          attempt.Score,
		Passed:         attempt.PassStatus,
		NeedsReview:    attempt.NeedsReview,
		AutoSubmitted:  auto,
		TotalQuestions: len(questions),
		AttemptsUsed:   attempt.AttemptsUsed,
		AttemptsLeft:   attemptsLeft(quiz, attempt.AttemptsUsed),
		NewBadges:      badges,
		Feedback:       grade.Feedback,
	}
	return result, nil
}

// createAttempt checks the attempt budget and inserts the attempt row in one
// committed transaction, so the attempt counts even if grading fails later.
func (q *QuizEngine) createAttempt(ctx context.Context, studentID uint, quiz *models.Quiz, auto bool) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	err := q.serializable(ctx, func(tx *gorm.DB) error {
		used, err := q.attemptCount(tx, studentID, quiz.ID)
		if err != nil {
			return err
		}
		if used >= quiz.MaxAttempts {
			return Forbidden("no attempts left")
		}

		attempt = models.QuizAttempt{
			StudentID:     studentID,
			QuizID:        quiz.ID,
			AttemptsUsed:  used + 1,
			AutoSubmitted: auto,
			AnswersTemp:   []models.AnswerFeedback{},
			CompletedAt:   q.now(),
		}
		return tx.Create(&attempt).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isSerializationFailure(err) {
			return nil, Conflict("another submission for this quiz is in progress")
		}
		if KindOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("create attempt: %w", err)
	}
	return &attempt, nil
}

// Results returns the student's most recent attempt.
func (q *QuizEngine) Results(ctx context.Context, studentID, quizID uint) (*AttemptResult, error) {
	quiz, err := q.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	var attempt models.QuizAttempt
	err = q.conn(ctx).
		Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		Order("completed_at DESC, id DESC").
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("no attempts found for this quiz")
	}
	if err != nil {
		return nil, fmt.Errorf("load latest attempt: %w", err)
	}

	used, err := q.attemptCount(q.conn(ctx), studentID, quizID)
	if err != nil {
		return nil, err
	}
	return &AttemptResult{Attempt: attempt, AttemptsLeft: attemptsLeft(quiz, used), PassingScore: quiz.PassingScore}, nil
}

// Attempts lists every attempt of the student on the quiz, newest first.
func (q *QuizEngine) Attempts(ctx context.Context, studentID, quizID uint) ([]models.QuizAttempt, error) {
	if _, err := q.loadQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	var attempts []models.QuizAttempt
	err := q.conn(ctx).
		Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		Order("attempts_used DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}

// Grading is the pure outcome of comparing answers to a question set.
type Grading struct {
	Correct     int
	Total       int
	Score       float64 // percentage, 0 when the quiz has no questions
	NeedsReview bool
	Feedback    []models.AnswerFeedback
}

// Grade compares answers to questions. Answers are keyed by question id; the
// older "mcq-<id>" and "short-<id>" keys are accepted too.
func Grade(questions []models.Question, answers map[string]string) Grading {
	g := Grading{Total: len(questions), Feedback: make([]models.AnswerFeedback, 0, len(questions))}

	for _, question := range questions {
		submitted := lookupAnswer(answers, question)
		correct := normalizeAnswer(submitted) == normalizeAnswer(question.CorrectAnswer)
		if correct {
			g.Correct++
		} else if question.QuestionType == models.QuestionShortAnswer {
			g.NeedsReview = true
		}

		g.Feedback = append(g.Feedback, models.AnswerFeedback{
			QuestionID:      question.ID,
			QuestionText:    question.QuestionText,
			QuestionType:    question.QuestionType,
			SubmittedAnswer: submitted,
			CorrectAnswer:   question.CorrectAnswer,
			IsCorrect:       correct,
		})
	}

	g.Score = percentage(g.Correct, g.Total)
	return g
}

func lookupAnswer(answers map[string]string, question models.Question) string {
	id := strconv.FormatUint(uint64(question.ID), 10)
	if v, ok := answers[id]; ok {
		return v
	}
	prefix := "mcq-"
	if question.QuestionType == models.QuestionShortAnswer {
		prefix = "short-"
	}
	return answers[prefix+id]
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
