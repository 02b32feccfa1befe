package roster

import (
	"encoding/json"
	"fmt"
)

// Role is a member's clan role. The ordering of the constants is the
// promotion ladder: member < elder < coLeader < leader.
type Role int

const (
	RoleMember Role = iota
	RoleElder
	RoleCoLeader
	RoleLeader
)

// Roles returns every role in promotion order
func Roles() []Role {
	return []Role{RoleMember, RoleElder, RoleCoLeader, RoleLeader}
}

// ParseRole maps an upstream role string to a Role. The game API reports
// elder as "admin"; both spellings are accepted.
func ParseRole(s string) (Role, error) {
	switch s {
	case "member":
		return RoleMember, nil
	case "admin", "elder":
		return RoleElder, nil
	case "coLeader", "coleader":
		return RoleCoLeader, nil
	case "leader":
		return RoleLeader, nil
	}
	return RoleMember, fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	switch r {
	case RoleMember:
		return "member"
	case RoleElder:
		return "elder"
	case RoleCoLeader:
		return "coLeader"
	case RoleLeader:
		return "leader"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Next returns the promotion target for this role. coLeader and leader have
// no automatic next role; leader changes are manual-only.
func (r Role) Next() (Role, bool) {
	switch r {
	case RoleMember:
		return RoleElder, true
	case RoleElder:
		return RoleCoLeader, true
	}
	return r, false
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
