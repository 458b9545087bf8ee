package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAssignment_IsLateAt(t *testing.T) {
	due := time.Date(2025, 2, 1, 23, 59, 0, 0, time.UTC)
	a := &Assignment{DueDate: due}

	assert.False(t, a.IsLateAt(due))
	assert.True(t, a.IsLateAt(due.Add(time.Minute)))
	assert.Equal(t, SubmissionStatusLate, InitialSubmissionStatus(a.IsLateAt(due.Add(time.Minute))))
	assert.Equal(t, SubmissionStatusSubmitted, InitialSubmissionStatus(false))
}

func TestSubmission_Transitions(t *testing.T) {
	for status, want := range map[string][2]bool{
		SubmissionStatusSubmitted: {true, true},
		SubmissionStatusLate:      {true, true},
		SubmissionStatusApproved:  {false, true},
		SubmissionStatusRejected:  {false, false},
		SubmissionStatusGraded:    {false, false},
		SubmissionStatusReturned:  {false, false},
	} {
		s := &Submission{Status: status}
		assert.Equal(t, want[0], s.AwaitingReview(), status)
		assert.Equal(t, want[1], s.Gradable(), status)
	}
}

func TestSubject_OwnedBy(t *testing.T) {
	tid := "t-1"
	s := &Subject{AssignedTeacherID: &tid}
	assert.True(t, s.OwnedBy("t-1"))
	assert.False(t, s.OwnedBy("t-2"))
	assert.False(t, s.OwnedBy(""))
	assert.False(t, (&Subject{}).OwnedBy("t-1"))
}
