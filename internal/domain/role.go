package domain

import "fmt"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// Capability 能力集合；角色只决定拥有哪些能力
type Capability string

const (
	CapReadOwn Capability = "read-own"
	CapReadAll Capability = "read-all"
)

var roleCaps = map[Role][]Capability{
	RoleUser:  {CapReadOwn},
	RoleAdmin: {CapReadOwn, CapReadAll},
}

func (r Role) Can(c Capability) bool {
	for _, have := range roleCaps[r] {
		if have == c {
			return true
		}
	}
	return false
}

// Authorize passes iff the user's role equals required. Blocked users never pass.
func Authorize(u *User, required Role) error {
	if u == nil {
		return ErrUnauthorized
	}
	if u.IsBlocked {
		return ErrBlocked
	}
	if u.Role != required {
		return fmt.Errorf("%w: requires role %s", ErrForbidden, required)
	}
	return nil
}
