package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type ContentType string

const (
	ContentText       ContentType = "text"
	ContentFile       ContentType = "file"
	ContentQuiz       ContentType = "quiz"
	ContentAssignment ContentType = "assignment"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case ContentText, ContentFile, ContentQuiz, ContentAssignment:
		return true
	}
	return false
}

// SectionContent is the single piece of content a section carries.
// Implemented by TextContent, FileContent, QuizContent and AssignmentContent.
type SectionContent interface {
	Type() ContentType
	sectionContent()
}

type TextContent struct {
	Text string `json:"text_content"`
}

type FileContent struct {
	URL string `json:"file_url"`
}

type QuizContent struct {
	QuizID uint `json:"quiz_id"`
}

type AssignmentContent struct {
	AssignmentID uint `json:"assignment_id"`
}

func (TextContent) Type() ContentType       { return ContentText }
func (FileContent) Type() ContentType       { return ContentFile }
func (QuizContent) Type() ContentType       { return ContentQuiz }
func (AssignmentContent) Type() ContentType { return ContentAssignment }

func (TextContent) sectionContent()       {}
func (FileContent) sectionContent()       {}
func (QuizContent) sectionContent()       {}
func (AssignmentContent) sectionContent() {}

var ErrInvalidSectionContent = errors.New("section content does not match its content type")

// Section is one ordered unit of a lesson.
type Section struct {
	ID             uint        `json:"id" gorm:"primaryKey"`
	LessonID       uint        `json:"lesson_id" gorm:"index;not null"`
	Title          string      `json:"title" gorm:"not null"`
	Order          int         `json:"order" gorm:"column:order_index;not null;default:0"`
	ContentType    ContentType `json:"content_type" gorm:"type:varchar(20);not null"`
	TextContent    *string     `json:"text_content"`
	FileURL        *string     `json:"file_url"`
	QuizID         *uint       `json:"quiz_id" gorm:"index;check:chk_section_single_activity,quiz_id IS NULL OR assignment_id IS NULL"`
	AssignmentID   *uint       `json:"assignment_id" gorm:"index"`
	CalendarWeekID *uint       `json:"calendar_week_id" gorm:"index"`
	CreatedAt      time.Time   `json:"created_at"`
}

// SetContent stores content and clears the fields of every other variant.
func (s *Section) SetContent(content SectionContent) {
	s.TextContent, s.FileURL, s.QuizID, s.AssignmentID = nil, nil, nil, nil
	switch c := content.(type) {
	case TextContent:
		s.TextContent = &c.Text
	case FileContent:
		s.FileURL = &c.URL
	case QuizContent:
		s.QuizID = &c.QuizID
	case AssignmentContent:
		s.AssignmentID = &c.AssignmentID
	}
	if content != nil {
		s.ContentType = content.Type()
	}
}

// Content returns the variant selected by ContentType.
func (s Section) Content() (SectionContent, error) {
	set := 0
	for _, populated := range []bool{s.TextContent != nil, s.FileURL != nil, s.QuizID != nil, s.AssignmentID != nil} {
		if populated {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: %d content fields set", ErrInvalidSectionContent, set)
	}

	switch s.ContentType {
	case ContentText:
		if s.TextContent != nil {
			return TextContent{Text: *s.TextContent}, nil
		}
	case ContentFile:
		if s.FileURL != nil {
			return FileContent{URL: *s.FileURL}, nil
		}
	case ContentQuiz:
		if s.QuizID != nil {
			return QuizContent{QuizID: *s.QuizID}, nil
		}
	case ContentAssignment:
		if s.AssignmentID != nil {
			return AssignmentContent{AssignmentID: *s.AssignmentID}, nil
		}
	}
	return nil, fmt.Errorf("%w: content_type %q", ErrInvalidSectionContent, s.ContentType)
}

// BeforeSave rejects rows that break the one-content-field rule.
func (s *Section) BeforeSave(tx *gorm.DB) error {
	_, err := s.Content()
	return err
}
