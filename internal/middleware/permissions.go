package middleware

import "assessment-service/internal/models"

const (
	// Question bank
	ReadQuestionPermission  = "read:question"
	WriteQuestionPermission = "write:question"

	// Tests
	ReadTestPermission    = "read:test"
	WriteTestPermission   = "write:test"
	PublishTestPermission = "publish:test"

	// Attempts and results
	TakeTestPermission       = "take:test"
	RegradeAttemptPermission = "regrade:attempt"
	ReadResultPermission     = "read:result"
	ReadTestResultPermission = "read:result:test"

	// Analytics
	ReadAnalyticsPermission    = "read:analytics"
	ReadAllAnalyticsPermission = "read:analytics:all"

	AdminPermission   = "admin"
	ManagerPermission = "manager"
)

// RolePermissions grants the permissions each role carries when the token
// or gateway does not list them explicitly.
var RolePermissions = map[string][]string{
	models.RoleStudent: {
		ReadTestPermission,
		TakeTestPermission,
		ReadResultPermission,
	},
	models.RoleInstructor: {
		ReadQuestionPermission,
		WriteQuestionPermission,
		ReadTestPermission,
		WriteTestPermission,
		PublishTestPermission,
		RegradeAttemptPermission,
		ReadResultPermission,
		ReadTestResultPermission,
		ReadAnalyticsPermission,
	},
	models.RoleAdmin: {
		AdminPermission,
	},
}
