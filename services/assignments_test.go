package services

import (
	"lms/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitAssignment(t *testing.T) {
	f := newFixture(t)
	due := f.clock.Add(48 * time.Hour)
	assignment := models.Assignment{LecturerID: f.lecturer.ID, Title: "Report", DueDate: &due}
	f.create(&assignment)

	_, err := f.svc.Assignments.Submit(f.ctx, f.student.ID, assignment.ID, "u1", "report.pdf")
	assert.Equal(t, KindValidation, KindOf(err), "assignment without a section")

	section := f.section(models.AssignmentContent{AssignmentID: assignment.ID}, nil)
	f.section(models.TextContent{Text: "more"}, nil)

	res, err := f.svc.Assignments.Submit(f.ctx, f.student.ID, assignment.ID, "u1", "report.pdf")
	require.NoError(t, err)
	assert.Empty(t, res.ReplacedFileURL)
	assert.ElementsMatch(t, []string{BadgeFirstSubmission, BadgeEarlyBird, BadgeSectionStarter}, badgeNames(res.NewBadges))

	ids, err := f.svc.Progress.CompletedSections(f.ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{section.ID}, ids)

	res, err = f.svc.Assignments.Submit(f.ctx, f.student.ID, assignment.ID, "u2", "report-v2.pdf")
	require.NoError(t, err)
	assert.Equal(t, "u1", res.ReplacedFileURL)
	assert.Empty(t, res.NewBadges)

	subs, err := f.svc.Assignments.Submissions(f.ctx, f.student.ID, assignment.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "u2", subs[0].FileURL)

	all, err := f.svc.Assignments.AllSubmissions(f.ctx, f.lecturerID(), assignment.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.svc.Assignments.AllSubmissions(f.ctx, f.studentID(), assignment.ID)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestSubmitUnknownAssignment(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Assignments.Submit(f.ctx, f.student.ID, 404, "u", "x")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestDeleteSubmission(t *testing.T) {
	f := newFixture(t)
	assignment := models.Assignment{LecturerID: f.lecturer.ID, Title: "Report"}
	f.create(&assignment)
	sub := models.AssignmentSubmission{AssignmentID: assignment.ID, StudentID: f.student.ID, FileURL: "u", SubmittedAt: f.clock}
	f.create(&sub)

	other := models.User{Email: "x@example.com", Role: models.RoleStudent}
	f.create(&other)

	_, err := f.svc.Assignments.DeleteSubmission(f.ctx, other.ID, sub.ID)
	assert.Equal(t, KindForbidden, KindOf(err))

	url, err := f.svc.Assignments.DeleteSubmission(f.ctx, f.student.ID, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "u", url)

	_, err = f.svc.Assignments.DeleteSubmission(f.ctx, f.student.ID, sub.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}
