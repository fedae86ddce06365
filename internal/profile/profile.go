// apps/go-server/internal/profile/profile.go
//
// SQLite-backed player profiles.
//
// A profile is the career carried across rounds (total score, streaks,
// unlocked achievements) plus the player's display preferences. Player ids
// are either a user id (signed in) or an anonymous cookie id.

package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/robalobadob/wordsearch/apps/go-server/internal/game"
)

var ErrUnknownTheme = errors.New("unknown theme")

// Themes the client knows how to render.
var Themes = []string{"default", "dark", "ocean", "forest", "sunset"}

const DefaultTheme = "default"

type Profile struct {
	PlayerID     string `json:"playerId"`
	game.Career
	GamesPlayed  int       `json:"gamesPlayed"`
	Wins         int       `json:"wins"`
	SoundEnabled bool      `json:"soundEnabled"`
	Theme        string    `json:"theme"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Prefs are the player-editable settings.
type Prefs struct {
	SoundEnabled *bool  `json:"soundEnabled"`
	Theme        string `json:"theme"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func blank(playerID string) Profile {
	return Profile{
		PlayerID:     playerID,
		Career:       game.Career{Achievements: []string{}},
		SoundEnabled: true,
		Theme:        DefaultTheme,
	}
}

// Get loads a profile. Players with no row yet get the defaults.
func (s *Store) Get(ctx context.Context, playerID string) (Profile, error) {
	p := blank(playerID)
	var (
		achievements string
		updated      string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT total_score, streak, best_streak, games_played, wins, achievements, sound_enabled, theme, updated_at
		FROM profiles WHERE player_id=?`, playerID,
	).Scan(&p.TotalScore, &p.Streak, &p.BestStreak, &p.GamesPlayed, &p.Wins, &achievements, &p.SoundEnabled, &p.Theme, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return Profile{}, err
	}
	if err := json.Unmarshal([]byte(achievements), &p.Achievements); err != nil {
		return Profile{}, fmt.Errorf("decode achievements: %w", err)
	}
	if p.Achievements == nil {
		p.Achievements = []string{}
	}
	p.UpdatedAt, _ = time.Parse(time.DateTime, updated)
	return p, nil
}

// RecordRound adds a finished round to the stored career and bumps the
// played/won counters. The round is applied on top of the saved row, so
// games finishing out of order or in parallel never overwrite each other.
// Achievements the round reports are kept even if the saved streak would
// not unlock them.
func (s *Store) RecordRound(ctx context.Context, playerID string, r game.Result) (game.Career, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return game.Career{}, err
	}
	defer func() { _ = tx.Rollback() }()

	c := game.Career{Achievements: []string{}}
	var achievements string
	err = tx.QueryRowContext(ctx,
		`SELECT total_score, streak, best_streak, achievements FROM profiles WHERE player_id=?`, playerID,
	).Scan(&c.TotalScore, &c.Streak, &c.BestStreak, &achievements)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return game.Career{}, err
	default:
		if err := json.Unmarshal([]byte(achievements), &c.Achievements); err != nil {
			return game.Career{}, fmt.Errorf("decode achievements: %w", err)
		}
	}

	c.Apply(r)
	c.Achievements = lo.Uniq(append(c.Achievements, r.Career.Achievements...))
	ach, err := json.Marshal(c.Achievements)
	if err != nil {
		return game.Career{}, err
	}
	win := lo.Ternary(r.Outcome == game.StateCompleted, 1, 0)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles(player_id, total_score, streak, best_streak, games_played, wins, achievements, updated_at)
		VALUES(?,?,?,?,1,?,?,?)
		ON CONFLICT(player_id) DO UPDATE SET
			total_score=excluded.total_score,
			streak=excluded.streak,
			best_streak=excluded.best_streak,
			games_played=profiles.games_played+1,
			wins=profiles.wins+excluded.wins,
			achievements=excluded.achievements,
			updated_at=excluded.updated_at`,
		playerID, c.TotalScore, c.Streak, c.BestStreak, win, string(ach), now(),
	)
	if err != nil {
		return game.Career{}, err
	}
	return c, tx.Commit()
}

// SavePrefs applies the non-empty fields of p.
func (s *Store) SavePrefs(ctx context.Context, playerID string, p Prefs) (Profile, error) {
	if p.Theme != "" && !lo.Contains(Themes, p.Theme) {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownTheme, p.Theme)
	}
	cur, err := s.Get(ctx, playerID)
	if err != nil {
		return Profile{}, err
	}
	if p.SoundEnabled != nil {
		cur.SoundEnabled = *p.SoundEnabled
	}
	if p.Theme != "" {
		cur.Theme = p.Theme
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles(player_id, sound_enabled, theme, updated_at) VALUES(?,?,?,?)
		ON CONFLICT(player_id) DO UPDATE SET
			sound_enabled=excluded.sound_enabled,
			theme=excluded.theme,
			updated_at=excluded.updated_at`,
		playerID, cur.SoundEnabled, cur.Theme, now(),
	)
	if err != nil {
		return Profile{}, err
	}
	return s.Get(ctx, playerID)
}

// Claim moves an anonymous player's history to a user. The profile moves
// only if the user does not have one yet.
func (s *Store) Claim(ctx context.Context, anonID, userID string) error {
	if anonID == "" || anonID == userID {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE OR IGNORE profiles SET player_id=? WHERE player_id=?`, userID, anonID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE rounds SET player_id=? WHERE player_id=?`, userID, anonID); err != nil {
		return err
	}
	return tx.Commit()
}

func now() string { return time.Now().UTC().Format(time.DateTime) }
