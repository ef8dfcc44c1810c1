package models

type Player struct {
	Id                 string `json:"id"`
	Game_id            string `json:"game_id"`
	User_id            string `json:"user_id"` // empty for bots
	Username           string `json:"username"`
	Balance            int    `json:"balance"`
	Pos                int    `json:"pos"` // 0..39
	InJail             bool   `json:"in_jail" pg:",use_zero"`
	JailTurns          int    `json:"jail_turns" pg:",use_zero"`
	ConsecutiveDoubles int    `json:"consecutive_doubles" pg:",use_zero"`
	IsBot              bool   `json:"is_bot" pg:",use_zero"`
	BotStrategy        string `json:"bot_strategy"`       // empty for humans
	Difficulty         string `json:"difficulty"`         // easy, normal, hard
	CommunityStanding  int    `json:"community_standing"` // 0..100, gates zoning approvals
	Bankrupt           bool   `json:"bankrupt" pg:",use_zero"`
}

type PlayerDto struct {
	Username   string   `json:"username"`
	Balance    int      `json:"balance"`
	Pos        int      `json:"pos"`
	Properties []string `json:"properties"`
	Jail       bool     `json:"jail"`
	IsBot      bool     `json:"is_bot"`
}
