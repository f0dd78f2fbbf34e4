package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecolearn/ecolearn-api/internal/models"
)

func TestCanCreateCourseRequiresApprovedTeacher(t *testing.T) {
	pending := Actor{ID: "t1", Role: models.RoleTeacher, TeacherApproved: false}
	approved := Actor{ID: "t1", Role: models.RoleTeacher, TeacherApproved: true}
	student := Actor{ID: "s1", Role: models.RoleStudent}

	assert.False(t, Can(pending, ActionCreateCourse, Resource{}))
	assert.True(t, Can(approved, ActionCreateCourse, Resource{}))
	assert.False(t, Can(student, ActionCreateCourse, Resource{}))
}

func TestCanModifyCourseRequiresOwnership(t *testing.T) {
	owner := Actor{ID: "t1", Role: models.RoleTeacher, TeacherApproved: true}
	other := Actor{ID: "t2", Role: models.RoleTeacher, TeacherApproved: true}
	res := Resource{OwnerID: "t1"}

	assert.True(t, Can(owner, ActionModifyCourse, res))
	assert.False(t, Can(other, ActionModifyCourse, res))
	assert.False(t, Can(other, ActionGradeSubmission, res))
}

func TestCanAdminTransitions(t *testing.T) {
	admin := Actor{ID: "a1", Role: models.RoleAdmin}
	teacher := Actor{ID: "t1", Role: models.RoleTeacher, TeacherApproved: true}

	for _, action := range []Action{ActionApproveTeacher, ActionApproveCourse, ActionConfigureWinners, ActionManageBadges, ActionBroadcast} {
		assert.True(t, Can(admin, action, Resource{}), string(action))
		assert.False(t, Can(teacher, action, Resource{}), string(action))
	}
}

func TestCanStudentActions(t *testing.T) {
	student := Actor{ID: "s1", Role: models.RoleStudent}
	admin := Actor{ID: "a1", Role: models.RoleAdmin}

	assert.True(t, Can(student, ActionEnrollCourse, Resource{}))
	assert.True(t, Can(student, ActionSubmitWork, Resource{}))
	assert.False(t, Can(admin, ActionSubmitWork, Resource{}))
}
