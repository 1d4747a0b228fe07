package research

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

const EmbeddingDimensions = 1536

const (
	PhaseAcute    = "acute"
	PhaseSubacute = "subacute"
	PhaseChronic  = "chronic"
)

type Paper struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Hash        string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"hash"`
	Title       string         `gorm:"type:text;not null" json:"title"`
	Authors     pq.StringArray `gorm:"type:text[]" json:"authors"`
	Year        *int           `json:"year,omitempty"`
	DOI         *string        `gorm:"type:varchar(255);column:doi" json:"doi,omitempty"`
	SourceURI   string         `gorm:"type:text;column:source_uri" json:"source_uri"`
	ProcessedAt time.Time      `gorm:"not null;default:now();column:processed_at" json:"processed_at"`
}

func (Paper) TableName() string { return "papers" }

type Section struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PaperID     uuid.UUID `gorm:"type:uuid;not null;index;column:paper_id" json:"paper_id"`
	SectionName string    `gorm:"type:varchar(100);not null;column:section_name" json:"section_name"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Position    int       `gorm:"not null" json:"position"`
}

func (Section) TableName() string { return "paper_sections" }

// Insight is one extracted research claim. Empty StrokeTypes means it
// applies to every stroke type.
type Insight struct {
	ID                 uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PaperID            uuid.UUID        `gorm:"type:uuid;not null;index;column:paper_id" json:"paper_id"`
	SectionID          *uuid.UUID       `gorm:"type:uuid;column:section_id" json:"section_id,omitempty"`
	Claim              string           `gorm:"type:text;not null" json:"claim"`
	Evidence           *string          `gorm:"type:text" json:"evidence,omitempty"`
	QuantitativeResult *string          `gorm:"type:text;column:quantitative_result" json:"quantitative_result,omitempty"`
	StrokeTypes        pq.StringArray   `gorm:"type:text[];column:stroke_types" json:"stroke_types"`
	RecoveryPhase      *string          `gorm:"type:varchar(20);column:recovery_phase" json:"recovery_phase,omitempty"`
	Intervention       *string          `gorm:"type:text" json:"intervention,omitempty"`
	SampleSize         *int             `gorm:"column:sample_size" json:"sample_size,omitempty"`
	Embedding          *pgvector.Vector `gorm:"type:vector(1536)" json:"-"`
	CreatedAt          time.Time        `gorm:"not null;default:now()" json:"created_at"`
}

func (Insight) TableName() string { return "insights" }

// ScoredInsight is a search hit; Similarity is 1 - cosine distance.
type ScoredInsight struct {
	Insight
	Similarity float64 `gorm:"column:similarity" json:"similarity"`
}
