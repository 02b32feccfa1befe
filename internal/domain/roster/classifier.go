package roster

import (
	"encoding/json"
	"fmt"
)

// Action is the management action recommended for a member
type Action int

const (
	ActionPromote Action = iota
	ActionMaintain
	ActionDemote
	ActionKick
)

func (a Action) String() string {
	switch a {
	case ActionPromote:
		return "promote"
	case ActionMaintain:
		return "maintain"
	case ActionDemote:
		return "demote"
	case ActionKick:
		return "kick"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// Recommendation is the classifier output for one member. It is recomputed
// every cycle and never persisted.
type Recommendation struct {
	Action Action `json:"action"`
	Reason string `json:"reason"`

	// Deficit is the member's current maintenance threshold minus their
	// donations. Negative means surplus.
	Deficit int `json:"deficit"`
}

// Classify applies the donation policy to one member. The rules run in
// strict priority order and the first match wins: a kick or demote signal
// must never be masked by promotion eligibility.
//
// Pure function: No I/O operations, fully testable with direct inputs.
func Classify(role Role, donations int, reqs DonationRequirements) Recommendation {
	current := reqs.For(role)
	deficit := current.Maintenance - donations

	// Rule 1: elder and coLeader below maintenance are demoted. Leader is
	// exempt; leader changes are manual-only.
	if role != RoleMember && role != RoleLeader && donations < current.Maintenance {
		return Recommendation{
			Action:  ActionDemote,
			Reason:  "below maintenance requirement",
			Deficit: deficit,
		}
	}

	// Rule 2: members below the member maintenance threshold (which may
	// legitimately be 0) are kick candidates.
	if role == RoleMember && donations < current.Maintenance {
		return Recommendation{
			Action:  ActionKick,
			Reason:  "below member requirement, candidate for removal",
			Deficit: deficit,
		}
	}

	// Rule 3: promotion when the next role exists and its threshold is met
	if next, ok := role.Next(); ok && donations >= reqs.For(next).Promotion {
		return Recommendation{
			Action:  ActionPromote,
			Reason:  fmt.Sprintf("meets promotion requirement for %s", next),
			Deficit: deficit,
		}
	}

	// Rule 4: maintenance satisfied
	if donations >= current.Maintenance {
		return Recommendation{
			Action:  ActionMaintain,
			Reason:  "meeting maintenance requirements",
			Deficit: deficit,
		}
	}

	// Rule 5: fallback, reachable only for leader (no demote/kick path)
	return Recommendation{
		Action:  ActionMaintain,
		Reason:  "leader role is managed manually",
		Deficit: deficit,
	}
}
