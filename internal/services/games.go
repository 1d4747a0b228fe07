package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/strokecovery/strokecovery-backend/internal/data/repos"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/domain/games"
	"github.com/strokecovery/strokecovery-backend/internal/pkg/dates"
	"github.com/strokecovery/strokecovery-backend/internal/platform/apierr"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

type GameResultInput struct {
	GameID      string
	GameType    string
	Score       *int
	TimeSeconds *int
}

type GameResultPage struct {
	Results []*types.GameResult `json:"results"`
	Total   int64               `json:"total"`
}

type GameStats struct {
	TotalPlayed    int64   `json:"total_played"`
	TotalCorrect   int64   `json:"total_correct"`
	Accuracy       float64 `json:"accuracy"`
	TodayPlayed    int64   `json:"today_played"`
	TodayCorrect   int64   `json:"today_correct"`
	AccuracyToday  float64 `json:"accuracy_today"`
	CurrentStreak  int     `json:"current_streak"`
	LastPlayedDate *string `json:"last_played_date"`
}

type GamesService interface {
	SaveResult(ctx context.Context, userID uuid.UUID, in GameResultInput) (*types.GameResult, error)
	ListResults(ctx context.Context, userID uuid.UUID, gameType string, limit, offset int) (*GameResultPage, error)
	Stats(ctx context.Context, userID uuid.UUID) (*GameStats, error)
}

type gamesService struct {
	log      *logger.Logger
	profiles repos.ProfileRepo
	results  repos.GameResultRepo
	now      dates.Clock
}

func NewGamesService(log *logger.Logger, profiles repos.ProfileRepo, results repos.GameResultRepo, now dates.Clock) GamesService {
	if now == nil {
		now = dates.SystemClock
	}
	return &gamesService{log: log.With("service", "GamesService"), profiles: profiles, results: results, now: now}
}

func (s *gamesService) SaveResult(ctx context.Context, userID uuid.UUID, in GameResultInput) (*types.GameResult, error) {
	gameID := strings.TrimSpace(in.GameID)
	if gameID == "" || len(gameID) > 20 {
		return nil, apierr.BadRequest("invalid_game_id", "game_id must be 1 to 20 characters")
	}
	if !games.ValidGameType(in.GameType) {
		return nil, apierr.BadRequest("invalid_game_type", "game_type must be emoji_to_word or word_to_emoji")
	}
	if in.Score == nil || (*in.Score != 0 && *in.Score != 1) {
		return nil, apierr.BadRequest("invalid_score", "score must be 0 or 1")
	}
	if in.TimeSeconds != nil && *in.TimeSeconds < 0 {
		return nil, apierr.BadRequest("invalid_time_seconds", "time_seconds cannot be negative")
	}
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	created, err := s.results.Create(ctx, nil, &types.GameResult{
		PatientID:   p.ID,
		GameID:      gameID,
		GameType:    in.GameType,
		Score:       *in.Score,
		TimeSeconds: in.TimeSeconds,
		PlayedAt:    s.now(),
	})
	if err != nil {
		return nil, internalErr("save_result_failed", fmt.Errorf("create game result: %w", err))
	}
	return created, nil
}

func (s *gamesService) ListResults(ctx context.Context, userID uuid.UUID, gameType string, limit, offset int) (*GameResultPage, error) {
	if gameType != "" && !games.ValidGameType(gameType) {
		return nil, apierr.BadRequest("invalid_game_type", "game_type must be emoji_to_word or word_to_emoji")
	}
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.results.Count(ctx, nil, p.ID, gameType)
	if err != nil {
		return nil, internalErr("list_results_failed", err)
	}
	rows, err := s.results.List(ctx, nil, p.ID, gameType, clampLimit(limit, 50, 200), clampOffset(offset))
	if err != nil {
		return nil, internalErr("list_results_failed", err)
	}
	if rows == nil {
		rows = []*types.GameResult{}
	}
	return &GameResultPage{Results: rows, Total: total}, nil
}

func (s *gamesService) Stats(ctx context.Context, userID uuid.UUID) (*GameStats, error) {
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	today := dates.Day(s.now())

	out := &GameStats{}
	if out.TotalPlayed, out.TotalCorrect, err = s.results.Counts(ctx, nil, p.ID, nil); err != nil {
		return nil, internalErr("load_stats_failed", err)
	}
	if out.TodayPlayed, out.TodayCorrect, err = s.results.Counts(ctx, nil, p.ID, &today); err != nil {
		return nil, internalErr("load_stats_failed", err)
	}
	out.Accuracy = percent(out.TotalCorrect, out.TotalPlayed)
	out.AccuracyToday = percent(out.TodayCorrect, out.TodayPlayed)

	played, err := s.results.PlayDates(ctx, nil, p.ID)
	if err != nil {
		return nil, internalErr("load_stats_failed", err)
	}
	out.CurrentStreak = Streak(played, today)
	if len(played) > 0 {
		out.LastPlayedDate = dates.FormatPtr(&played[0])
	}
	return out, nil
}

func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}

// Streak counts consecutive play days ending today or yesterday. played must be
// distinct days, newest first.
func Streak(played []time.Time, today time.Time) int {
	if len(played) == 0 {
		return 0
	}
	today = dates.Day(today)
	yesterday := today.AddDate(0, 0, -1)
	last := dates.Day(played[0])
	if last.Before(yesterday) {
		return 0
	}
	check := yesterday
	if last.Equal(today) {
		check = today
	}
	streak := 0
	for _, d := range played {
		d = dates.Day(d)
		if d.Equal(check) {
			streak++
			check = check.AddDate(0, 0, -1)
		} else if d.Before(check) {
			break
		}
	}
	return streak
}
