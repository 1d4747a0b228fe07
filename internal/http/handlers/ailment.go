package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/strokecovery/strokecovery-backend/internal/http/response"
	"github.com/strokecovery/strokecovery-backend/internal/services"
)

type AilmentHandler struct {
	ailments services.AilmentService
}

func NewAilmentHandler(ailments services.AilmentService) *AilmentHandler {
	return &AilmentHandler{ailments: ailments}
}

func (h *AilmentHandler) bind(c *gin.Context) (services.AilmentInput, bool) {
	var req struct {
		EntryDate    *string `json:"entry_date"`
		Symptom      *string `json:"symptom"`
		BodyLocation *string `json:"body_location"`
		Severity     *int    `json:"severity"`
		Notes        *string `json:"notes"`
	}
	if !bindJSON(c, &req) {
		return services.AilmentInput{}, false
	}
	in := services.AilmentInput{
		Symptom:      req.Symptom,
		BodyLocation: req.BodyLocation,
		Severity:     req.Severity,
		Notes:        req.Notes,
	}
	var ok bool
	in.EntryDate, ok = parseDatePtr(c, "entry_date", req.EntryDate)
	return in, ok
}

// POST /api/ailments
func (h *AilmentHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	in, ok := h.bind(c)
	if !ok {
		return
	}
	e, err := h.ailments.Create(c.Request.Context(), userID, in)
	if err != nil {
		respondServiceError(c, err, "create_ailment_failed")
		return
	}
	response.RespondCreated(c, newAilmentView(e))
}

// GET /api/ailments
func (h *AilmentHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	q, ok := listQuery(c)
	if !ok {
		return
	}
	rows, err := h.ailments.List(c.Request.Context(), userID, c.Query("symptom"), q)
	if err != nil {
		respondServiceError(c, err, "list_ailments_failed")
		return
	}
	out := make([]ailmentView, 0, len(rows))
	for _, e := range rows {
		out = append(out, newAilmentView(e))
	}
	response.RespondOK(c, out)
}

// GET /api/ailments/:id
func (h *AilmentHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	e, err := h.ailments.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondServiceError(c, err, "load_ailment_failed")
		return
	}
	response.RespondOK(c, newAilmentView(e))
}

// PUT /api/ailments/:id
func (h *AilmentHandler) Update(c *gin.Context) {
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
	e, err := h.ailments.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		respondServiceError(c, err, "update_ailment_failed")
		return
	}
	response.RespondOK(c, newAilmentView(e))
}

// DELETE /api/ailments/:id
func (h *AilmentHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.ailments.Delete(c.Request.Context(), userID, id); err != nil {
		respondServiceError(c, err, "delete_ailment_failed")
		return
	}
	response.RespondNoContent(c)
}
