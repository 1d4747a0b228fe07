package medication

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/strokecovery/strokecovery-backend/internal/data/dberr"
	"github.com/strokecovery/strokecovery-backend/internal/data/repos/testutil"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestMedicineRepoLifecycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "med@example.com")
	p := testutil.SeedProfile(t, ctx, tx, u.ID)
	repo := NewMedicineRepo(db, testutil.Logger(t))

	today := time.Now().UTC().Truncate(24 * time.Hour)
	ended := today.AddDate(0, 0, -1)

	active := testutil.SeedMedicine(t, ctx, tx, p.ID, "Aspirin")
	old := testutil.SeedMedicine(t, ctx, tx, p.ID, "Old")
	old.EndDate = &ended
	if err := repo.Save(ctx, tx, old); err != nil {
		t.Fatalf("Save: %v", err)
	}

	list, err := repo.ListByPatient(ctx, tx, p.ID, false, today)
	if err != nil {
		t.Fatalf("ListByPatient: %v", err)
	}
	if len(list) != 1 || list[0].ID != active.ID {
		t.Fatalf("expected only the active medicine, got %+v", list)
	}
	all, err := repo.ListByPatient(ctx, tx, p.ID, true, today)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListByPatient(includeInactive): %d %v", len(all), err)
	}

	onDay, err := repo.ListActiveOn(ctx, tx, p.ID, today)
	if err != nil || len(onDay) != 1 {
		t.Fatalf("ListActiveOn: %d %v", len(onDay), err)
	}

	if m, err := repo.GetForPatient(ctx, tx, uuid.New(), active.ID); err != nil || m != nil {
		t.Fatalf("GetForPatient with foreign patient should miss: %+v %v", m, err)
	}

	ok, err := repo.Delete(ctx, tx, p.ID, active.ID)
	if err != nil || !ok {
		t.Fatalf("Delete: %v %v", ok, err)
	}
	if m, _ := repo.GetForPatient(ctx, tx, p.ID, active.ID); m != nil {
		t.Fatalf("deleted medicine still visible")
	}
}

func TestMedicineLogFindForSlotMatchesDay(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "medlog@example.com")
	p := testutil.SeedProfile(t, ctx, tx, u.ID)
	m := testutil.SeedMedicine(t, ctx, tx, p.ID, "Statin")
	logs := NewMedicineLogRepo(db, testutil.Logger(t))

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if _, err := logs.Create(ctx, tx, &types.MedicineLog{
		MedicineID:    m.ID,
		ScheduledTime: day.Add(8 * time.Hour),
		TimeOfDay:     "morning",
		Status:        "taken",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := logs.FindForSlot(ctx, tx, m.ID, "morning", day)
	if err != nil || got == nil || got.Status != "taken" {
		t.Fatalf("FindForSlot: %+v %v", got, err)
	}
	if miss, _ := logs.FindForSlot(ctx, tx, m.ID, "morning", day.AddDate(0, 0, 1)); miss != nil {
		t.Fatalf("FindForSlot matched the wrong day")
	}

	joined, err := logs.ListForPatientBetween(ctx, tx, p.ID, day, day.AddDate(0, 0, 1))
	if err != nil || len(joined) != 1 || joined[0].Medicine == nil || joined[0].Medicine.Name != "Statin" {
		t.Fatalf("ListForPatientBetween: %+v %v", joined, err)
	}
}

func TestMedicineInfoCaseInsensitiveUnique(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewMedicineInfoRepo(db, testutil.Logger(t))

	if _, err := repo.Create(ctx, tx, &types.MedicineInfo{MedicineName: "Paracetamol", DrugClass: strPtr("Analgesic")}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.GetByName(ctx, tx, "  PARACETAMOL ")
	if err != nil || got == nil {
		t.Fatalf("GetByName: %+v %v", got, err)
	}

	tx.SavePoint("dup")
	_, err = repo.Create(ctx, tx, &types.MedicineInfo{MedicineName: "paracetamol"})
	if !dberr.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
	tx.RollbackTo("dup")
}

func TestMedicineInfoSearchQueryShape(t *testing.T) {
	gdb, mock := testutil.Mock(t)
	repo := NewMedicineInfoRepo(gdb, testutil.Logger(t))

	mock.ExpectQuery(`SELECT \* FROM "medicine_info" WHERE medicine_name ILIKE \$1 AND \(drug_class IS NOT NULL AND lower\(drug_class\) <> 'unknown'\) ORDER BY medicine_name ASC LIMIT \$2`).
		WithArgs(`%50\%%`, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "medicine_name", "drug_class"}).
			AddRow(uuid.New(), "Drug 50%", "Statin"))

	out, err := repo.Search(context.Background(), nil, " 50% ", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(out) != 1 || out[0].MedicineName != "Drug 50%" {
		t.Fatalf("unexpected search result %+v", out)
	}
}
