package games

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strokecovery/strokecovery-backend/internal/data/repos/testutil"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
)

func TestCountsQueryShape(t *testing.T) {
	gdb, mock := testutil.Mock(t)
	repo := NewResultRepo(gdb, testutil.Logger(t))
	pid := uuid.New()

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS played, COALESCE\(SUM\(score\), 0\) AS correct FROM "game_results" WHERE patient_id = \$1`).
		WithArgs(pid).
		WillReturnRows(sqlmock.NewRows([]string{"played", "correct"}).AddRow(7, 5))

	played, correct, err := repo.Counts(context.Background(), nil, pid, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 7, played)
	assert.EqualValues(t, 5, correct)
}

func TestPlayDatesDistinctNewestFirst(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, tx, "games@example.com")
	p := testutil.SeedProfile(t, ctx, tx, u.ID)
	repo := NewResultRepo(db, testutil.Logger(t))

	base := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{base, base.Add(2 * time.Hour), base.AddDate(0, 0, -1)} {
		_, err := repo.Create(ctx, tx, &types.GameResult{PatientID: p.ID, GameID: "g1", GameType: "emoji_to_word", Score: 1, PlayedAt: at})
		require.NoError(t, err)
	}

	dates, err := repo.PlayDates(ctx, tx, p.ID)
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC), dates[1])
}

func TestCountFiltersByGameType(t *testing.T) {
	gdb, mock := testutil.Mock(t)
	repo := NewResultRepo(gdb, testutil.Logger(t))
	pid := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "game_results" WHERE patient_id = \$1 AND game_type = \$2`).
		WithArgs(pid, "word_to_emoji").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.Count(context.Background(), nil, pid, "word_to_emoji")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}
