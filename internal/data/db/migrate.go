package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/strokecovery/strokecovery-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity
		&types.User{},
		&types.PatientProfile{},

		// Daily logging
		&types.Medicine{},
		&types.MedicineLog{},
		&types.MedicineInfo{},
		&types.MoodEntry{},
		&types.AilmentEntry{},
		&types.TherapySession{},
		&types.GameResult{},

		// Stroke bites
		&types.StrokeBite{},
		&types.StrokeBiteAnswer{},
	)
}

// AutoMigrateResearch creates the paper-refinery tables. It needs the
// vector extension, which NewPostgresService enables.
func AutoMigrateResearch(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Paper{},
		&types.PaperSection{},
		&types.Insight{},
	)
}

type indexStmt struct {
	name string
	sql  string
}

func execAll(db *gorm.DB, stmts []indexStmt) error {
	for _, st := range stmts {
		if err := db.Exec(st.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", st.name, err)
		}
	}
	return nil
}

func EnsureAppIndexes(db *gorm.DB) error {
	return execAll(db, []indexStmt{
		{"idx_medicine_info_lower_name", `
			CREATE UNIQUE INDEX IF NOT EXISTS idx_medicine_info_lower_name
			ON medicine_info (lower(medicine_name));`},
		{"idx_mood_entries_patient_date", `
			CREATE UNIQUE INDEX IF NOT EXISTS idx_mood_entries_patient_date
			ON mood_entries (patient_id, entry_date);`},
		{"idx_ailment_entries_patient_date", `
			CREATE INDEX IF NOT EXISTS idx_ailment_entries_patient_date
			ON ailment_entries (patient_id, entry_date DESC);`},
		{"idx_therapy_sessions_patient_date", `
			CREATE INDEX IF NOT EXISTS idx_therapy_sessions_patient_date
			ON therapy_sessions (patient_id, session_date DESC);`},
		{"idx_medicine_logs_medicine_slot", `
			CREATE INDEX IF NOT EXISTS idx_medicine_logs_medicine_slot
			ON medicine_logs (medicine_id, time_of_day, scheduled_time);`},
		{"idx_game_results_patient_played", `
			CREATE INDEX IF NOT EXISTS idx_game_results_patient_played
			ON game_results (patient_id, played_at DESC);`},
	})
}

func EnsureResearchIndexes(db *gorm.DB) error {
	return execAll(db, []indexStmt{
		{"idx_insights_embedding", `
			CREATE INDEX IF NOT EXISTS idx_insights_embedding
			ON insights USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);`},
		{"idx_insights_stroke_types", `
			CREATE INDEX IF NOT EXISTS idx_insights_stroke_types
			ON insights USING GIN (stroke_types);`},
		{"idx_insights_recovery_phase", `
			CREATE INDEX IF NOT EXISTS idx_insights_recovery_phase
			ON insights (recovery_phase);`},
	})
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureAppIndexes(s.db); err != nil {
		s.log.Error("App index migration failed", "error", err)
		return err
	}
	return nil
}

func (s *PostgresService) MigrateResearch() error {
	s.log.Info("Migrating research tables...")
	if err := AutoMigrateResearch(s.db); err != nil {
		s.log.Error("Research migration failed", "error", err)
		return err
	}
	if err := EnsureResearchIndexes(s.db); err != nil {
		s.log.Error("Research index migration failed", "error", err)
		return err
	}
	return nil
}
