package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/strokecovery/strokecovery-backend/internal/http/response"
	"github.com/strokecovery/strokecovery-backend/internal/services"
)

type GamesHandler struct {
	games services.GamesService
}

func NewGamesHandler(games services.GamesService) *GamesHandler {
	return &GamesHandler{games: games}
}

// POST /api/games/results
func (h *GamesHandler) SaveResult(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req struct {
		GameID      string `json:"game_id"`
		GameType    string `json:"game_type"`
		Score       *int   `json:"score"`
		TimeSeconds *int   `json:"time_seconds"`
	}
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.games.SaveResult(c.Request.Context(), userID, services.GameResultInput{
		GameID:      req.GameID,
		GameType:    req.GameType,
		Score:       req.Score,
		TimeSeconds: req.TimeSeconds,
	})
	if err != nil {
		respondServiceError(c, err, "save_result_failed")
		return
	}
	response.RespondCreated(c, r)
}

// GET /api/games/results?game_type=&limit=&offset=
func (h *GamesHandler) ListResults(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}
	page, err := h.games.ListResults(c.Request.Context(), userID, c.Query("game_type"), limit, offset)
	if err != nil {
		respondServiceError(c, err, "list_results_failed")
		return
	}
	response.RespondOK(c, page)
}

// GET /api/games/stats
func (h *GamesHandler) Stats(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	st, err := h.games.Stats(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "load_stats_failed")
		return
	}
	response.RespondOK(c, st)
}
