// Package policy centralises capability checks. Route-level RBAC remains the
// outer gate; services call Can before any mutation so ownership and approval
// rules live in one place instead of per-handler conditionals.
package policy

import "github.com/ecolearn/ecolearn-api/internal/models"

// Action names a mutating capability.
type Action string

const (
	ActionCreateCourse     Action = "course:create"
	ActionModifyCourse     Action = "course:modify"
	ActionEnrollCourse     Action = "course:enroll"
	ActionGradeSubmission  Action = "submission:grade"
	ActionSubmitWork       Action = "work:submit"
	ActionApproveTeacher   Action = "teacher:approve"
	ActionApproveCourse    Action = "course:approve"
	ActionConfigureWinners Action = "winners:configure"
	ActionManageBadges     Action = "badges:manage"
	ActionBroadcast        Action = "notifications:broadcast"
)

// Actor is the authenticated principal evaluated against a resource.
type Actor struct {
	ID              string
	Role            models.UserRole
	TeacherApproved bool
}

// Resource captures the ownership/approval facts a decision needs.
type Resource struct {
	OwnerID string
}

// Can reports whether the actor may perform the action on the resource.
// Content creation requires an approved teacher; modification additionally
// requires ownership. Admin-only transitions are limited to admins.
func Can(actor Actor, action Action, res Resource) bool {
	switch action {
	case ActionCreateCourse:
		return actor.Role == models.RoleTeacher && actor.TeacherApproved
	case ActionModifyCourse, ActionGradeSubmission:
		return actor.Role == models.RoleTeacher && actor.TeacherApproved && actor.ID == res.OwnerID
	case ActionEnrollCourse, ActionSubmitWork:
		return actor.Role == models.RoleStudent
	case ActionApproveTeacher, ActionApproveCourse, ActionConfigureWinners, ActionManageBadges, ActionBroadcast:
		return actor.Role == models.RoleAdmin
	}
	return false
}
