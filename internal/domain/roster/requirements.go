package roster

import "fmt"

// RoleRequirement holds the donation thresholds attached to one role.
// Promotion is the donation count needed to be promoted INTO this role;
// Maintenance is the count needed to keep it.
type RoleRequirement struct {
	Promotion   int `json:"promotion"`
	Maintenance int `json:"maintenance"`
}

// DonationRequirements is the donation policy document. Leader is never an
// automatic promotion or demotion target; its entry only carries an advisory
// maintenance threshold.
type DonationRequirements struct {
	Member   RoleRequirement `json:"member"`
	Elder    RoleRequirement `json:"elder"`
	CoLeader RoleRequirement `json:"coLeader"`
	Leader   RoleRequirement `json:"leader"`
}

// DefaultRequirements returns the built-in donation policy used when no
// stored document exists or the stored one cannot be parsed.
func DefaultRequirements() DonationRequirements {
	return DonationRequirements{
		Member:   RoleRequirement{Promotion: 0, Maintenance: 0},
		Elder:    RoleRequirement{Promotion: 1000, Maintenance: 500},
		CoLeader: RoleRequirement{Promotion: 2000, Maintenance: 1000},
		Leader:   RoleRequirement{Promotion: 0, Maintenance: 0},
	}
}

// For returns the requirement entry for a role
func (dr DonationRequirements) For(role Role) RoleRequirement {
	switch role {
	case RoleMember:
		return dr.Member
	case RoleElder:
		return dr.Elder
	case RoleCoLeader:
		return dr.CoLeader
	case RoleLeader:
		return dr.Leader
	}
	return RoleRequirement{}
}

// Validate checks the policy invariants: no negative thresholds, promotion
// at least maintenance for every promotable role, and promotion thresholds
// non-decreasing along the member < elder < coLeader ladder. Violations are
// reported with a descriptive error instead of being clamped.
func (dr DonationRequirements) Validate() error {
	entries := []struct {
		role Role
		req  RoleRequirement
	}{
		{RoleMember, dr.Member},
		{RoleElder, dr.Elder},
		{RoleCoLeader, dr.CoLeader},
		{RoleLeader, dr.Leader},
	}

	for _, e := range entries {
		if e.req.Promotion < 0 {
			return fmt.Errorf("%s promotion threshold must not be negative, got %d", e.role, e.req.Promotion)
		}
		if e.req.Maintenance < 0 {
			return fmt.Errorf("%s maintenance threshold must not be negative, got %d", e.role, e.req.Maintenance)
		}
	}

	// Member is never a promotion target, so only elder and coLeader need
	// promotion >= maintenance.
	if dr.Elder.Promotion < dr.Elder.Maintenance {
		return fmt.Errorf("elder promotion threshold (%d) must be at least its maintenance threshold (%d)",
			dr.Elder.Promotion, dr.Elder.Maintenance)
	}
	if dr.CoLeader.Promotion < dr.CoLeader.Maintenance {
		return fmt.Errorf("coLeader promotion threshold (%d) must be at least its maintenance threshold (%d)",
			dr.CoLeader.Promotion, dr.CoLeader.Maintenance)
	}

	if dr.CoLeader.Promotion < dr.Elder.Promotion {
		return fmt.Errorf("coLeader promotion threshold (%d) must not be below elder promotion threshold (%d)",
			dr.CoLeader.Promotion, dr.Elder.Promotion)
	}

	return nil
}
