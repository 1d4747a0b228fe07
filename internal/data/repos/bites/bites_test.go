package bites

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/strokecovery/strokecovery-backend/internal/data/dberr"
	"github.com/strokecovery/strokecovery-backend/internal/data/repos/testutil"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
)

func TestStrokeBiteUniquePerPatientDay(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, tx, "bites@example.com")
	p := testutil.SeedProfile(t, ctx, tx, u.ID)
	repo := NewStrokeBiteRepo(db, testutil.Logger(t))

	today := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	first := &types.StrokeBite{
		PatientID:          p.ID,
		GeneratedDate:      today,
		CardsJSON:          datatypes.JSON(`{"cards":[]}`),
		StartCardID:        "f1",
		CardSequenceLength: 8,
	}
	if _, err := repo.Create(ctx, tx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tx.SavePoint("dup")
	_, err := repo.Create(ctx, tx, &types.StrokeBite{
		PatientID:     p.ID,
		GeneratedDate: today,
		CardsJSON:     datatypes.JSON(`{"cards":[]}`),
		StartCardID:   "c1",
	})
	if !dberr.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
	tx.RollbackTo("dup")

	got, err := repo.GetByPatientDate(ctx, tx, p.ID, today)
	if err != nil || got == nil || got.ID != first.ID {
		t.Fatalf("GetByPatientDate: %+v %v", got, err)
	}
	if other, _ := repo.GetByIDForPatient(ctx, tx, uuid.New(), first.ID); other != nil {
		t.Fatalf("bite visible to another patient")
	}

	recent, err := repo.ListSince(ctx, tx, p.ID, today.AddDate(0, 0, -14))
	if err != nil || len(recent) != 1 {
		t.Fatalf("ListSince: %d %v", len(recent), err)
	}
}

func TestAnswersBatchAndWindow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, tx, "answers@example.com")
	p := testutil.SeedProfile(t, ctx, tx, u.ID)
	bites := NewStrokeBiteRepo(db, testutil.Logger(t))
	answers := NewAnswerRepo(db, testutil.Logger(t))

	b, err := bites.Create(ctx, tx, &types.StrokeBite{
		PatientID:     p.ID,
		GeneratedDate: time.Now().UTC().Truncate(24 * time.Hour),
		CardsJSON:     datatypes.JSON(`{}`),
		StartCardID:   "c1",
	})
	if err != nil {
		t.Fatalf("Create bite: %v", err)
	}

	q := "How are you?"
	old := time.Now().UTC().AddDate(0, 0, -40)
	saved, err := answers.CreateBatch(ctx, tx, []*types.StrokeBiteAnswer{
		{BiteID: b.ID, PatientID: p.ID, CardID: "c4", SelectedKey: "a", QuestionText: &q},
		{BiteID: b.ID, PatientID: p.ID, CardID: "c4", SelectedKey: "b", QuestionText: &q, CreatedAt: old},
	})
	if err != nil || len(saved) != 2 || saved[0].ID == uuid.Nil {
		t.Fatalf("CreateBatch: %+v %v", saved, err)
	}

	recent, err := answers.ListSince(ctx, tx, p.ID, time.Now().UTC().AddDate(0, 0, -30))
	if err != nil || len(recent) != 1 || recent[0].SelectedKey != "a" {
		t.Fatalf("ListSince: %+v %v", recent, err)
	}
}
