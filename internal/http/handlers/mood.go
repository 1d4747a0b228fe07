package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/strokecovery/strokecovery-backend/internal/http/response"
	"github.com/strokecovery/strokecovery-backend/internal/services"
)

type MoodHandler struct {
	moods services.MoodService
}

func NewMoodHandler(moods services.MoodService) *MoodHandler {
	return &MoodHandler{moods: moods}
}

type moodRequest struct {
	EntryDate *string `json:"entry_date"`
	MoodLevel *int    `json:"mood_level"`
	Notes     *string `json:"notes"`
}

func (h *MoodHandler) bind(c *gin.Context) (services.MoodInput, bool) {
	var req moodRequest
	if !bindJSON(c, &req) {
		return services.MoodInput{}, false
	}
	in := services.MoodInput{MoodLevel: req.MoodLevel, Notes: req.Notes}
	var ok bool
	in.EntryDate, ok = parseDatePtr(c, "entry_date", req.EntryDate)
	return in, ok
}

// POST /api/mood
func (h *MoodHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	in, ok := h.bind(c)
	if !ok {
		return
	}
	e, err := h.moods.Create(c.Request.Context(), userID, in)
	if err != nil {
		respondServiceError(c, err, "create_mood_failed")
		return
	}
	response.RespondCreated(c, newMoodView(e))
}

// GET /api/mood
func (h *MoodHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	q, ok := listQuery(c)
	if !ok {
		return
	}
	rows, err := h.moods.List(c.Request.Context(), userID, q)
	if err != nil {
		respondServiceError(c, err, "list_mood_failed")
		return
	}
	out := make([]moodView, 0, len(rows))
	for _, e := range rows {
		out = append(out, newMoodView(e))
	}
	response.RespondOK(c, out)
}

// GET /api/mood/:id
func (h *MoodHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	e, err := h.moods.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondServiceError(c, err, "load_mood_failed")
		return
	}
	response.RespondOK(c, newMoodView(e))
}

// PUT /api/mood/:id
func (h *MoodHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	in, ok := h.bind(c)
	if !ok {
		return
	}
	e, err := h.moods.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		respondServiceError(c, err, "update_mood_failed")
		return
	}
	response.RespondOK(c, newMoodView(e))
}

// DELETE /api/mood/:id
func (h *MoodHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.moods.Delete(c.Request.Context(), userID, id); err != nil {
		respondServiceError(c, err, "delete_mood_failed")
		return
	}
	response.RespondNoContent(c)
}
