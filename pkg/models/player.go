package models

// Player holds the aggregate statistics of one quiz player
type Player struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	TotalGames   int    `json:"total_games" db:"total_games"`
	TotalScore   int    `json:"total_score" db:"total_score"`
	HighestScore int    `json:"highest_score" db:"highest_score"`
}

// AverageScore returns the mean score per completed game
func (p Player) AverageScore() float64 {
	if p.TotalGames == 0 {
		return 0
	}
	return float64(p.TotalScore) / float64(p.TotalGames)
}

// LeaderboardEntry is the read-only projection of a player used for ranking
type LeaderboardEntry struct {
	Rank         int    `json:"rank" db:"-"`
	Username     string `json:"username" db:"username"`
	HighestScore int    `json:"highest_score" db:"highest_score"`
	TotalGames   int    `json:"total_games" db:"total_games"`
}
