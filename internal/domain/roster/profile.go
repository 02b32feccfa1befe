package roster

// MemberProfile is a read-only snapshot of one clan member for a single
// evaluation cycle. It merges the roster entry with the player profile.
type MemberProfile struct {
	Tag               string `json:"tag"`
	Name              string `json:"name"`
	Role              Role   `json:"role"`
	TownHallLevel     int    `json:"townHallLevel"`
	Donations         int    `json:"donations"`
	DonationsReceived int    `json:"donationsReceived"`
	WarStars          int    `json:"warStars"`
	Trophies          int    `json:"trophies"`
	WarOptedIn        bool   `json:"warOptedIn"`

	// LeagueTierID is 0 when the member has no league placement
	LeagueTierID int    `json:"leagueTierId,omitempty"`
	LeagueName   string `json:"leagueName,omitempty"`
}
