package httpserver

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/apps/go-server/internal/daily"
	"github.com/robalobadob/wordsearch/apps/go-server/internal/game"
)

const persistTimeout = 5 * time.Second

// recorder persists finished rounds. The listener runs while the round is
// locked, so the writes happen on their own goroutine.
type recorder struct {
	game.NopListener
	s      *Server
	gameID string
	owner  string // owner at creation; the registry may reassign it
}

func (p *recorder) RoundEnded(r game.Result) {
	p.s.pending.Add(1)
	go func() {
		defer p.s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		p.s.persistRound(ctx, p.gameID, p.currentOwner(ctx), r)
	}()
}

func (p *recorder) currentOwner(ctx context.Context) string {
	if e, err := p.s.store.Get(ctx, p.gameID); err == nil {
		return e.Owner
	}
	return p.owner
}

func (s *Server) persistRound(ctx context.Context, gameID, playerID string, r game.Result) {
	logger := log.With().Str("gameId", gameID).Str("player", playerID).Logger()

	if _, err := s.profiles.RecordRound(ctx, playerID, r); err != nil {
		logger.Warn().Err(err).Msg("record profile")
	}
	if err := s.profiles.AppendRound(ctx, gameID, playerID, r); err != nil {
		logger.Warn().Err(err).Msg("append round history")
	}
	if r.Daily != "" {
		err := s.daily.InsertResult(ctx, daily.Result{
			PlayerID:   playerID,
			Date:       r.Daily,
			Completed:  r.Outcome == game.StateCompleted,
			Score:      r.FinalScore,
			WordsFound: r.WordsFound,
			ElapsedSec: r.TimeUsed,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("insert daily result")
		}
	}
	logger.Info().
		Str("outcome", string(r.Outcome)).
		Int("finalScore", r.FinalScore).
		Int("wordsFound", r.WordsFound).
		Msg("round finished")
}
