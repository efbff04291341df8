package domain

import (
	"fmt"
	"strings"
)

// Role enumerates account roles.
type Role uint8

const (
	RoleUser Role = iota + 1
	RoleEmployee
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "USER"
	case RoleEmployee:
		return "EMPLOYEE"
	case RoleAdmin:
		return "ADMIN"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// IsModerator reports whether the role may review user content.
func (r Role) IsModerator() bool {
	switch r {
	case RoleEmployee, RoleAdmin:
		return true
	case RoleUser:
		return false
	default:
		return false
	}
}

// ParseRole parses the persisted role name.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "USER":
		return RoleUser, nil
	case "EMPLOYEE":
		return RoleEmployee, nil
	case "ADMIN":
		return RoleAdmin, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Principal is the authenticated caller threaded through every service call.
type Principal struct {
	UserID             string
	Pseudo             string
	Role               Role
	MustChangePassword bool
	ClientIP           string
}

// IsModerator reports whether the principal may review user content.
func (p *Principal) IsModerator() bool {
	return p != nil && p.Role.IsModerator()
}
