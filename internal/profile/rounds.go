package profile

import (
	"context"
	"database/sql"

	"github.com/robalobadob/wordsearch/apps/go-server/internal/game"
)

// Round is one finished round in a player's history.
type Round struct {
	ID         string `json:"id"`
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
	Daily      string `json:"daily,omitempty"`
	Outcome    string `json:"outcome"`
	Score      int    `json:"score"`
	FinalScore int    `json:"finalScore"`
	WordsFound int    `json:"wordsFound"`
	TotalWords int    `json:"totalWords"`
	TimeUsed   int    `json:"timeUsed"`
	FinishedAt string `json:"finishedAt"`
}

// AppendRound adds a finished round to the history.
func (s *Store) AppendRound(ctx context.Context, gameID, playerID string, r game.Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rounds(id, player_id, difficulty, category, daily, outcome, score, final_score, words_found, total_words, time_used, finished_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
		gameID, playerID, r.Difficulty, r.Category, sql.NullString{String: r.Daily, Valid: r.Daily != ""},
		string(r.Outcome), r.Score, r.FinalScore, r.WordsFound, r.TotalWords, r.TimeUsed, now(),
	)
	return err
}

// Rounds lists the most recent rounds first. limit defaults to 50.
func (s *Store) Rounds(ctx context.Context, playerID string, limit int) ([]Round, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, difficulty, category, COALESCE(daily,''), outcome, score, final_score, words_found, total_words, time_used, finished_at
		FROM rounds WHERE player_id=? ORDER BY finished_at DESC, rowid DESC LIMIT ?`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Round{}
	for rows.Next() {
		var r Round
		if err := rows.Scan(&r.ID, &r.Difficulty, &r.Category, &r.Daily, &r.Outcome, &r.Score,
			&r.FinalScore, &r.WordsFound, &r.TotalWords, &r.TimeUsed, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
