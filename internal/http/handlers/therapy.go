package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/strokecovery/strokecovery-backend/internal/http/response"
	"github.com/strokecovery/strokecovery-backend/internal/services"
)

type TherapyHandler struct {
	therapy services.TherapyService
}

func NewTherapyHandler(therapy services.TherapyService) *TherapyHandler {
	return &TherapyHandler{therapy: therapy}
}

func (h *TherapyHandler) bind(c *gin.Context) (services.TherapyInput, bool) {
	var req struct {
		TherapyType     *string `json:"therapy_type"`
		SessionDate     *string `json:"session_date"`
		SessionTime     *string `json:"session_time"`
		DurationMinutes *int    `json:"duration_minutes"`
		Notes           *string `json:"notes"`
		FeelingRating   *int    `json:"feeling_rating"`
		FeelingNotes    *string `json:"feeling_notes"`
	}
	if !bindJSON(c, &req) {
		return services.TherapyInput{}, false
	}
	in := services.TherapyInput{
		TherapyType:     req.TherapyType,
		SessionTime:     req.SessionTime,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		FeelingRating:   req.FeelingRating,
		FeelingNotes:    req.FeelingNotes,
	}
	var ok bool
	in.SessionDate, ok = parseDatePtr(c, "session_date", req.SessionDate)
	return in, ok
}

// POST /api/therapy/sessions
func (h *TherapyHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	in, ok := h.bind(c)
	if !ok {
		return
	}
	s, err := h.therapy.Create(c.Request.Context(), userID, in)
	if err != nil {
		respondServiceError(c, err, "create_session_failed")
		return
	}
	response.RespondCreated(c, newTherapyView(s))
}

// GET /api/therapy/sessions?type=
func (h *TherapyHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	q, ok := listQuery(c)
	if !ok {
		return
	}
	rows, err := h.therapy.List(c.Request.Context(), userID, c.Query("type"), q)
	if err != nil {
		respondServiceError(c, err, "list_sessions_failed")
		return
	}
	response.RespondOK(c, therapyViews(rows))
}

// GET /api/therapy/sessions/:id
func (h *TherapyHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	s, err := h.therapy.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondServiceError(c, err, "load_session_failed")
		return
	}
	response.RespondOK(c, newTherapyView(s))
}

// PUT /api/therapy/sessions/:id
func (h *TherapyHandler) Update(c *gin.Context) {
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
	s, err := h.therapy.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		respondServiceError(c, err, "update_session_failed")
		return
	}
	response.RespondOK(c, newTherapyView(s))
}

// DELETE /api/therapy/sessions/:id
func (h *TherapyHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.therapy.Delete(c.Request.Context(), userID, id); err != nil {
		respondServiceError(c, err, "delete_session_failed")
		return
	}
	response.RespondNoContent(c)
}

// GET /api/therapy/calendar/:year/:month
func (h *TherapyHandler) Calendar(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_year", err)
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_month", err)
		return
	}
	cal, err := h.therapy.CalendarMonth(c.Request.Context(), userID, year, month)
	if err != nil {
		respondServiceError(c, err, "load_calendar_failed")
		return
	}
	response.RespondOK(c, newTherapyCalendarView(cal))
}

// GET /api/therapy/stats
func (h *TherapyHandler) Stats(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	st, err := h.therapy.Stats(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "load_stats_failed")
		return
	}
	response.RespondOK(c, st)
}
