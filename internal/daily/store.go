package daily

import (
	"context"
	"database/sql"
)

// Result is one player's finished daily round.
type Result struct {
	PlayerID   string `json:"playerId"`
	Date       string `json:"date"`
	Completed  bool   `json:"completed"`
	Score      int    `json:"score"`
	WordsFound int    `json:"wordsFound"`
	ElapsedSec int    `json:"elapsedSec"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) AlreadyPlayed(ctx context.Context, playerID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE player_id=? AND date=?",
		playerID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult keeps the first result per player and date.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(player_id, date, completed, score, words_found, elapsed_sec)
		VALUES(?,?,?,?,?,?)`, r.PlayerID, r.Date, r.Completed, r.Score, r.WordsFound, r.ElapsedSec,
	)
	return err
}

type LBRow struct {
	PlayerID   string `json:"playerId"`
	Name       string `json:"name"`
	Completed  bool   `json:"completed"`
	Score      int    `json:"score"`
	WordsFound int    `json:"wordsFound"`
	ElapsedSec int    `json:"elapsedSec"`
}

// Leaderboard ranks a date's results by score, then speed.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.player_id, COALESCE(u.username, ''), d.completed, d.score, d.words_found, d.elapsed_sec
		FROM daily_results d
		LEFT JOIN users u ON u.id = d.player_id
		WHERE d.date=?
		ORDER BY d.score DESC, d.elapsed_sec ASC, d.created_at ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.PlayerID, &r.Name, &r.Completed, &r.Score, &r.WordsFound, &r.ElapsedSec); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Claim moves an anonymous player's results to a user. Dates the user has
// already played keep the user's result.
func (s *Store) Claim(ctx context.Context, anonID, userID string) error {
	if anonID == "" || anonID == userID {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE OR IGNORE daily_results SET player_id=? WHERE player_id=?`, userID, anonID)
	return err
}
