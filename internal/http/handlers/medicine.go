package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/strokecovery/strokecovery-backend/internal/http/response"
	"github.com/strokecovery/strokecovery-backend/internal/services"
)

type MedicineHandler struct {
	medicines services.MedicineService
}

func NewMedicineHandler(medicines services.MedicineService) *MedicineHandler {
	return &MedicineHandler{medicines: medicines}
}

// POST /api/medicines
func (h *MedicineHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req struct {
		Name      string  `json:"name"`
		Dosage    *string `json:"dosage"`
		Morning   bool    `json:"morning"`
		Afternoon bool    `json:"afternoon"`
		Night     bool    `json:"night"`
		Timing    string  `json:"timing"`
		StartDate *string `json:"start_date"`
		EndDate   *string `json:"end_date"`
		Notes     *string `json:"notes"`
	}
	if !bindJSON(c, &req) {
		return
	}
	in := services.MedicineInput{
		Name:      req.Name,
		Dosage:    req.Dosage,
		Morning:   req.Morning,
		Afternoon: req.Afternoon,
		Night:     req.Night,
		Timing:    req.Timing,
		Notes:     req.Notes,
	}
	if in.StartDate, ok = parseDatePtr(c, "start_date", req.StartDate); !ok {
		return
	}
	if in.EndDate, ok = parseDatePtr(c, "end_date", req.EndDate); !ok {
		return
	}
	m, err := h.medicines.Create(c.Request.Context(), userID, in)
	if err != nil {
		respondServiceError(c, err, "create_medicine_failed")
		return
	}
	response.RespondCreated(c, newMedicineView(m))
}

// GET /api/medicines?include_inactive=
func (h *MedicineHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	includeInactive := false
	if raw := strings.TrimSpace(c.Query("include_inactive")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_include_inactive", err)
			return
		}
		includeInactive = v
	}
	out, err := h.medicines.List(c.Request.Context(), userID, includeInactive)
	if err != nil {
		respondServiceError(c, err, "list_medicines_failed")
		return
	}
	response.RespondOK(c, medicineViews(out))
}

// GET /api/medicines/today
func (h *MedicineHandler) Today(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	out, err := h.medicines.Today(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "load_today_failed")
		return
	}
	response.RespondOK(c, out)
}

// GET /api/medicines/:id
func (h *MedicineHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	m, err := h.medicines.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondServiceError(c, err, "load_medicine_failed")
		return
	}
	response.RespondOK(c, newMedicineView(m))
}

// PUT /api/medicines/:id
func (h *MedicineHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name      *string `json:"name"`
		Dosage    *string `json:"dosage"`
		Morning   *bool   `json:"morning"`
		Afternoon *bool   `json:"afternoon"`
		Night     *bool   `json:"night"`
		Timing    *string `json:"timing"`
		StartDate *string `json:"start_date"`
		EndDate   *string `json:"end_date"`
		Notes     *string `json:"notes"`
		IsActive  *bool   `json:"is_active"`
	}
	if !bindJSON(c, &req) {
		return
	}
	in := services.MedicineUpdate{
		Name:      req.Name,
		Dosage:    req.Dosage,
		Morning:   req.Morning,
		Afternoon: req.Afternoon,
		Night:     req.Night,
		Timing:    req.Timing,
		Notes:     req.Notes,
		IsActive:  req.IsActive,
	}
	if in.StartDate, ok = parseDatePtr(c, "start_date", req.StartDate); !ok {
		return
	}
	if in.EndDate, ok = parseDatePtr(c, "end_date", req.EndDate); !ok {
		return
	}
	m, err := h.medicines.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		respondServiceError(c, err, "update_medicine_failed")
		return
	}
	response.RespondOK(c, newMedicineView(m))
}

// DELETE /api/medicines/:id
func (h *MedicineHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.medicines.Delete(c.Request.Context(), userID, id); err != nil {
		respondServiceError(c, err, "delete_medicine_failed")
		return
	}
	response.RespondNoContent(c)
}

// POST /api/medicines/:id/log
func (h *MedicineHandler) LogDose(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		TimeOfDay     string     `json:"time_of_day"`
		Status        string     `json:"status"`
		ScheduledTime *time.Time `json:"scheduled_time"`
		Notes         *string    `json:"notes"`
	}
	if !bindJSON(c, &req) {
		return
	}
	l, err := h.medicines.LogDose(c.Request.Context(), userID, id, services.MedicineLogInput{
		TimeOfDay:     req.TimeOfDay,
		Status:        req.Status,
		ScheduledTime: req.ScheduledTime,
		Notes:         req.Notes,
	})
	if err != nil {
		respondServiceError(c, err, "log_dose_failed")
		return
	}
	response.RespondOK(c, l)
}

// GET /api/medicines/:id/logs?limit=30
func (h *MedicineHandler) Logs(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 30)
	if !ok {
		return
	}
	out, err := h.medicines.Logs(c.Request.Context(), userID, id, limit)
	if err != nil {
		respondServiceError(c, err, "list_logs_failed")
		return
	}
	response.RespondOK(c, out)
}
