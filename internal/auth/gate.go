package auth

import (
	"fmt"

	"github.com/spec-kit/character-gallery/internal/domain"
	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
)

// Action is a guarded capability.
type Action uint8

const (
	ActionManageOwnCharacter Action = iota + 1
	ActionPostComment
	ActionModerate
	ActionManageUser
	ActionManageEmployee
	ActionDeleteAnyAccount
	ActionViewActivityLog
)

func (a Action) String() string {
	switch a {
	case ActionManageOwnCharacter:
		return "manage_own_character"
	case ActionPostComment:
		return "post_comment"
	case ActionModerate:
		return "moderate"
	case ActionManageUser:
		return "manage_user"
	case ActionManageEmployee:
		return "manage_employee"
	case ActionDeleteAnyAccount:
		return "delete_any_account"
	case ActionViewActivityLog:
		return "view_activity_log"
	default:
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
}

func errUnauthenticated() error {
	return apperrors.NewUnauthenticated("authentication required")
}

func errForbidden() error {
	return apperrors.NewForbidden("insufficient permissions")
}

// Allowed reports whether role may perform action.
func Allowed(role domain.Role, action Action) bool {
	switch action {
	case ActionManageOwnCharacter, ActionPostComment:
		switch role {
		case domain.RoleUser, domain.RoleEmployee, domain.RoleAdmin:
			return true
		}
		return false
	case ActionModerate:
		return role.IsModerator()
	case ActionManageUser:
		return role == domain.RoleEmployee
	case ActionManageEmployee, ActionDeleteAnyAccount, ActionViewActivityLog:
		return role == domain.RoleAdmin
	default:
		return false
	}
}

// Authorize checks that principal may perform action.
func Authorize(principal *domain.Principal, action Action) error {
	if principal == nil {
		return errUnauthenticated()
	}
	if !Allowed(principal.Role, action) {
		return errForbidden()
	}
	return nil
}

// AuthorizeOwnerOrModerator allows the resource owner or any moderator.
func AuthorizeOwnerOrModerator(principal *domain.Principal, ownerID string) error {
	if principal == nil {
		return errUnauthenticated()
	}
	if principal.UserID == ownerID || principal.IsModerator() {
		return nil
	}
	return errForbidden()
}

// AuthorizeOwner allows only the resource owner.
func AuthorizeOwner(principal *domain.Principal, ownerID string) error {
	if principal == nil {
		return errUnauthenticated()
	}
	if principal.UserID != ownerID {
		return errForbidden()
	}
	return nil
}

// AccountAction picks the management action that applies to target.
// Admin accounts are never management targets.
func AccountAction(target domain.Role) (Action, error) {
	switch target {
	case domain.RoleUser:
		return ActionManageUser, nil
	case domain.RoleEmployee:
		return ActionManageEmployee, nil
	case domain.RoleAdmin:
		return 0, apperrors.NewForbidden("admin accounts cannot be managed")
	default:
		return 0, apperrors.NewInvalidState("account has unknown role %s", target)
	}
}

// AuthorizeAccountManagement checks suspend, reactivate and temporary
// password actions on target.
func AuthorizeAccountManagement(principal *domain.Principal, target *domain.User) error {
	if principal == nil {
		return errUnauthenticated()
	}
	action, err := AccountAction(target.Role)
	if err != nil {
		return err
	}
	return Authorize(principal, action)
}

// AuthorizeAccountDeletion checks an admin deleting another account.
func AuthorizeAccountDeletion(principal *domain.Principal, target *domain.User) error {
	if err := Authorize(principal, ActionDeleteAnyAccount); err != nil {
		return err
	}
	if target.Role == domain.RoleAdmin {
		return apperrors.NewForbidden("admin accounts cannot be managed")
	}
	return nil
}
