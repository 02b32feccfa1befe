package app

// League identifies a member's league tier as reported by the API
type League struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ClanMember represents one roster entry from /clans/{tag}
type ClanMember struct {
	Tag               string  `json:"tag"`
	Name              string  `json:"name"`
	Role              string  `json:"role"`
	ExpLevel          int     `json:"expLevel"`
	TownHallLevel     int     `json:"townHallLevel"`
	Trophies          int     `json:"trophies"`
	ClanRank          int     `json:"clanRank"`
	PreviousClanRank  int     `json:"previousClanRank"`
	Donations         int     `json:"donations"`
	DonationsReceived int     `json:"donationsReceived"`
	League            *League `json:"league,omitempty"`
}

// ClanResponse represents the response from /clans/{tag}
type ClanResponse struct {
	Tag        string       `json:"tag"`
	Name       string       `json:"name"`
	ClanLevel  int          `json:"clanLevel"`
	Members    int          `json:"members"`
	WarLeague  *League      `json:"warLeague,omitempty"`
	MemberList []ClanMember `json:"memberList"`
}

// Player represents the response from /players/{tag}
type Player struct {
	Tag               string  `json:"tag"`
	Name              string  `json:"name"`
	TownHallLevel     int     `json:"townHallLevel"`
	ExpLevel          int     `json:"expLevel"`
	Trophies          int     `json:"trophies"`
	BestTrophies      int     `json:"bestTrophies"`
	WarStars          int     `json:"warStars"`
	AttackWins        int     `json:"attackWins"`
	DefenseWins       int     `json:"defenseWins"`
	Role              string  `json:"role"`
	WarPreference     string  `json:"warPreference"`
	Donations         int     `json:"donations"`
	DonationsReceived int     `json:"donationsReceived"`
	League            *League `json:"league,omitempty"`
}

// LeagueGroupClanMember is the slim member entry inside a league group clan
type LeagueGroupClanMember struct {
	Tag           string `json:"tag"`
	Name          string `json:"name"`
	TownHallLevel int    `json:"townHallLevel"`
}

// LeagueGroupClan is one clan participating in a CWL group
type LeagueGroupClan struct {
	Tag       string                  `json:"tag"`
	Name      string                  `json:"name"`
	ClanLevel int                     `json:"clanLevel"`
	Members   []LeagueGroupClanMember `json:"members"`
}

// Round holds the war tags for one round of a league group.
// Unplayed rounds carry the placeholder tag "#0".
type Round struct {
	WarTags []string `json:"warTags"`
}

// LeagueGroup represents the response from /clans/{tag}/currentwar/leaguegroup
type LeagueGroup struct {
	State  string            `json:"state"`
	Season string            `json:"season"`
	Clans  []LeagueGroupClan `json:"clans"`
	Rounds []Round           `json:"rounds"`
}

// WarAttack is a single attack inside a war record
type WarAttack struct {
	AttackerTag           string `json:"attackerTag"`
	DefenderTag           string `json:"defenderTag"`
	Stars                 int    `json:"stars"`
	DestructionPercentage int    `json:"destructionPercentage"`
	Order                 int    `json:"order"`
}

// WarMember is one member of a war roster with their attacks
type WarMember struct {
	Tag           string      `json:"tag"`
	Name          string      `json:"name"`
	TownhallLevel int         `json:"townhallLevel"`
	MapPosition   int         `json:"mapPosition"`
	Attacks       []WarAttack `json:"attacks,omitempty"`
}

// WarClan is one side of a war record
type WarClan struct {
	Tag                   string      `json:"tag"`
	Name                  string      `json:"name"`
	ClanLevel             int         `json:"clanLevel"`
	Attacks               int         `json:"attacks"`
	Stars                 int         `json:"stars"`
	DestructionPercentage float64     `json:"destructionPercentage"`
	Members               []WarMember `json:"members"`
}

// ClanWar represents a war record from /clanwarleagues/wars/{warTag}
// or /clans/{tag}/currentwar
type ClanWar struct {
	State                string  `json:"state"`
	TeamSize             int     `json:"teamSize"`
	AttacksPerMember     int     `json:"attacksPerMember,omitempty"`
	PreparationStartTime string  `json:"preparationStartTime"`
	StartTime            string  `json:"startTime"`
	EndTime              string  `json:"endTime"`
	Clan                 WarClan `json:"clan"`
	Opponent             WarClan `json:"opponent"`
}

// WarSnapshot is a stored war record with fetch metadata. Snapshots are
// written once per completed war and replayed to build historical stats.
type WarSnapshot struct {
	WarTag    string  `json:"war_tag"`
	Season    string  `json:"season,omitempty"`
	FetchedAt string  `json:"fetched_at"`
	War       ClanWar `json:"war"`
}
