package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kaptinlin/jsonrepair"

	"github.com/strokecovery/strokecovery-backend/internal/data/dberr"
	"github.com/strokecovery/strokecovery-backend/internal/data/repos"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/platform/apierr"
	"github.com/strokecovery/strokecovery-backend/internal/platform/llm"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

const medicineInfoSystemPrompt = "You are a medical information assistant. " +
	"Given a medicine name, return ONLY a JSON object with exactly three fields:\n" +
	`  "combination": the actual drug compound(s) and strength (e.g. "Paracetamol 650mg"). ` +
	"If it is already a compound name, state it clearly.\n" +
	`  "drug_class": the pharmacological class (e.g. "Analgesic / Antipyretic").` + "\n" +
	`  "used_for": primary clinical uses in plain language, very brief (e.g. "Pain relief, fever reduction").` + "\n" +
	`If you are unsure about any field, use "Unknown".` + "\n" +
	"Do NOT include any explanation outside the JSON."

const (
	medicineInfoSearchLimit = 10
	medicineInfoCacheSize   = 512
)

var medicineInfoLLMOptions = llm.Options{Temperature: 0.1, MaxTokens: 200}

type MedicineInfoService interface {
	// GetOrCreate returns the shared info row for name, asking the model on a miss.
	GetOrCreate(ctx context.Context, name string) (*types.MedicineInfo, error)
	Search(ctx context.Context, q string) ([]*types.MedicineInfo, error)
}

type medicineInfoService struct {
	log   *logger.Logger
	repo  repos.MedicineInfoRepo
	llm   llm.TextGenerator
	cache *lru.Cache[string, *types.MedicineInfo]
}

func NewMedicineInfoService(log *logger.Logger, repo repos.MedicineInfoRepo, gen llm.TextGenerator) MedicineInfoService {
	cache, _ := lru.New[string, *types.MedicineInfo](medicineInfoCacheSize)
	return &medicineInfoService{
		log:   log.With("service", "MedicineInfoService"),
		repo:  repo,
		llm:   gen,
		cache: cache,
	}
}

type medicineInfoPayload struct {
	Combination *string `json:"combination"`
	DrugClass   *string `json:"drug_class"`
	UsedFor     *string `json:"used_for"`
}

func (s *medicineInfoService) GetOrCreate(ctx context.Context, name string) (*types.MedicineInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.BadRequest("invalid_name", "Medicine name cannot be empty")
	}
	key := strings.ToLower(name)
	if hit, ok := s.cache.Get(key); ok {
		return hit, nil
	}

	existing, err := s.repo.GetByName(ctx, nil, name)
	if err != nil {
		return nil, internalErr("lookup_failed", err)
	}
	if existing != nil {
		s.cache.Add(key, existing)
		return existing, nil
	}

	// A failed call still stores a row so repeated lookups do not keep hitting the model.
	payload, err := s.ask(ctx, name)
	if err != nil {
		s.log.Warn("Medicine info lookup failed", "medicine", name, "error", err)
		payload = medicineInfoPayload{}
	}
	row := &types.MedicineInfo{
		MedicineName: name,
		Combination:  payload.Combination,
		DrugClass:    payload.DrugClass,
		UsedFor:      payload.UsedFor,
	}
	created, err := s.repo.Create(ctx, nil, row)
	if err != nil {
		if !dberr.IsUniqueViolation(err) {
			return nil, internalErr("store_failed", fmt.Errorf("create medicine info: %w", err))
		}
		winner, rerr := s.repo.GetByName(ctx, nil, name)
		if rerr != nil {
			return nil, internalErr("lookup_failed", rerr)
		}
		if winner == nil {
			return nil, internalErr("store_failed", fmt.Errorf("medicine info %q conflicted but is missing", name))
		}
		created = winner
	}
	s.cache.Add(key, created)
	return created, nil
}

func (s *medicineInfoService) ask(ctx context.Context, name string) (medicineInfoPayload, error) {
	var out medicineInfoPayload
	if s.llm == nil {
		return out, fmt.Errorf("no text generator configured")
	}
	raw, err := s.llm.GenerateText(ctx, medicineInfoSystemPrompt, "Medicine: "+name, medicineInfoLLMOptions)
	if err != nil {
		return out, err
	}
	return parseMedicineInfo(raw)
}

func parseMedicineInfo(raw string) (medicineInfoPayload, error) {
	var out medicineInfoPayload
	body := llm.StripCodeFence(raw)
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		fixed, rerr := jsonrepair.JSONRepair(body)
		if rerr != nil {
			return out, fmt.Errorf("parse medicine info: %w", err)
		}
		if err := json.Unmarshal([]byte(fixed), &out); err != nil {
			return out, fmt.Errorf("parse medicine info: %w", err)
		}
	}
	return out, nil
}

func (s *medicineInfoService) Search(ctx context.Context, q string) ([]*types.MedicineInfo, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apierr.BadRequest("invalid_query", "Search query cannot be empty")
	}
	out, err := s.repo.Search(ctx, nil, q, medicineInfoSearchLimit)
	if err != nil {
		return nil, internalErr("search_failed", err)
	}
	return out, nil
}
