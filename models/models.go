package models

// All lists every table in migration order.
func All() []interface{} {
	return []interface{}{
		&Institution{},
		&AcademicCalendar{},
		&CalendarWeek{},
		&Degree{},
		&User{},
		&Permission{},
		&Course{},
		&CourseLecturer{},
		&Lesson{},
		&Quiz{},
		&Question{},
		&Assignment{},
		&Section{},
		&QuizAttempt{},
		&Enrollment{},
		&SectionProgress{},
		&AssignmentSubmission{},
		&Badge{},
		&UserBadge{},
	}
}
