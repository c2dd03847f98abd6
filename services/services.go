package services

import (
	"context"
	"database/sql"
	"lms/models"
	"math/rand"
	"time"

	"gorm.io/gorm"
)

// Identity is the authenticated caller as established by the JWT middleware.
type Identity struct {
	SubjectID uint
	Role      string
}

func (i Identity) IsAdmin() bool    { return i.Role == models.RoleAdmin }
func (i Identity) IsLecturer() bool { return i.Role == models.RoleLecturer }
func (i Identity) IsStudent() bool  { return i.Role == models.RoleStudent }

type Options struct {
	// Serializable requests SERIALIZABLE isolation for attempt creation.
	// Leave off for sqlite, which serialises writers anyway.
	Serializable bool
	Now          func() time.Time
	Shuffle      func(questions []models.Question)
}

// Services bundles the domain services over one database handle.
type Services struct {
	Access      *Access
	Badges      *BadgeEvaluator
	Progress    *ProgressTracker
	Quizzes     *QuizEngine
	Content     *ContentService
	Assignments *AssignmentService
}

func New(db *gorm.DB, opts Options) *Services {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Shuffle == nil {
		opts.Shuffle = func(q []models.Question) {
			rand.Shuffle(len(q), func(i, j int) { q[i], q[j] = q[j], q[i] })
		}
	}

	base := &base{db: db, opts: opts}
	access := &Access{base}
	badges := &BadgeEvaluator{base}
	progress := &ProgressTracker{base: base, badges: badges}

	return &Services{
		Access:      access,
		Badges:      badges,
		Progress:    progress,
		Quizzes:     &QuizEngine{base: base, progress: progress, badges: badges},
		Content:     &ContentService{base: base, access: access},
		Assignments: &AssignmentService{base: base, progress: progress, badges: badges},
	}
}

type base struct {
	db   *gorm.DB
	opts Options
}

func (b *base) now() time.Time {
	return b.opts.Now().UTC()
}

func (b *base) conn(ctx context.Context) *gorm.DB {
	return b.db.WithContext(ctx)
}

// serializable runs fn in a transaction, at SERIALIZABLE isolation when configured.
func (b *base) serializable(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if !b.opts.Serializable {
		return b.conn(ctx).Transaction(fn)
	}
	return b.conn(ctx).Transaction(fn, &sql.TxOptions{Isolation: sql.LevelSerializable})
}
