package dto

// LeaderboardEntry is one ranked leaderboard row.
type LeaderboardEntry struct {
	ID     uint   `json:"id"`
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
	Points int    `json:"points"`
}

// LeaderboardResponse is the ranked standings for a scope.
type LeaderboardResponse struct {
	Scope   string             `json:"scope"`
	ClassID *uint              `json:"class_id,omitempty"`
	Entries []LeaderboardEntry `json:"entries"`
}
