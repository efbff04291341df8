package domain

import (
	"fmt"
	"time"
)

// ActivityAction is the closed set of audited actions.
type ActivityAction string

const (
	ActionUserRegistered          ActivityAction = "USER_REGISTERED"
	ActionUserLoggedIn            ActivityAction = "USER_LOGGED_IN"
	ActionPasswordChanged         ActivityAction = "PASSWORD_CHANGED"
	ActionTemporaryPasswordIssued ActivityAction = "TEMPORARY_PASSWORD_ISSUED"
	ActionAccountDeleted          ActivityAction = "ACCOUNT_DELETED"
	ActionUserDeleted             ActivityAction = "USER_DELETED"
	ActionUserSuspended           ActivityAction = "USER_SUSPENDED"
	ActionUserReactivated         ActivityAction = "USER_REACTIVATED"
	ActionEmployeeCreated         ActivityAction = "EMPLOYEE_CREATED"
	ActionCharacterCreated        ActivityAction = "CHARACTER_CREATED"
	ActionCharacterUpdated        ActivityAction = "CHARACTER_UPDATED"
	ActionCharacterSubmitted      ActivityAction = "CHARACTER_SUBMITTED"
	ActionCharacterApproved       ActivityAction = "CHARACTER_APPROVED"
	ActionCharacterRejected       ActivityAction = "CHARACTER_REJECTED"
	ActionCharacterShared         ActivityAction = "CHARACTER_SHARED"
	ActionCharacterUnshared       ActivityAction = "CHARACTER_UNSHARED"
	ActionCharacterDeleted        ActivityAction = "CHARACTER_DELETED"
	ActionCommentCreated          ActivityAction = "COMMENT_CREATED"
	ActionCommentApproved         ActivityAction = "COMMENT_APPROVED"
	ActionCommentRejected         ActivityAction = "COMMENT_REJECTED"
	ActionCommentDeleted          ActivityAction = "COMMENT_DELETED"
)

var activityActions = []ActivityAction{
	ActionUserRegistered,
	ActionUserLoggedIn,
	ActionPasswordChanged,
	ActionTemporaryPasswordIssued,
	ActionAccountDeleted,
	ActionUserDeleted,
	ActionUserSuspended,
	ActionUserReactivated,
	ActionEmployeeCreated,
	ActionCharacterCreated,
	ActionCharacterUpdated,
	ActionCharacterSubmitted,
	ActionCharacterApproved,
	ActionCharacterRejected,
	ActionCharacterShared,
	ActionCharacterUnshared,
	ActionCharacterDeleted,
	ActionCommentCreated,
	ActionCommentApproved,
	ActionCommentRejected,
	ActionCommentDeleted,
}

// ActivityActions returns every known action.
func ActivityActions() []ActivityAction {
	return append([]ActivityAction(nil), activityActions...)
}

// ParseActivityAction validates an action name.
func ParseActivityAction(s string) (ActivityAction, error) {
	for _, a := range activityActions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown activity action %q", s)
}

// Target types recorded in the activity log.
const (
	TargetUser      = "USER"
	TargetCharacter = "CHARACTER"
	TargetComment   = "COMMENT"
)

// ActivityLogEntry is an immutable audit record.
type ActivityLogEntry struct {
	ID          string
	Timestamp   time.Time
	Action      ActivityAction
	ActorID     string
	ActorPseudo string
	TargetType  string
	TargetID    string
	TargetName  string
	Details     string
	IPAddress   string
}
