package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/strokecovery/strokecovery-backend/internal/http/response"
	"github.com/strokecovery/strokecovery-backend/internal/pkg/dates"
	"github.com/strokecovery/strokecovery-backend/internal/services"
)

type CalendarHandler struct {
	calendar services.CalendarService
	now      dates.Clock
}

func NewCalendarHandler(calendar services.CalendarService, now dates.Clock) *CalendarHandler {
	if now == nil {
		now = dates.SystemClock
	}
	return &CalendarHandler{calendar: calendar, now: now}
}

// GET /api/calendar?start_date=&end_date=
// Missing bounds default to the current month.
func (h *CalendarHandler) Range(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	from, ok := parseDate(c, "start_date", c.Query("start_date"))
	if !ok {
		return
	}
	to, ok := parseDate(c, "end_date", c.Query("end_date"))
	if !ok {
		return
	}
	monthStart := dates.MonthStart(h.now())
	if from == nil {
		from = &monthStart
	}
	if to == nil {
		end := monthStart.AddDate(0, 1, -1)
		to = &end
	}
	out, err := h.calendar.Range(c.Request.Context(), userID, *from, *to)
	if err != nil {
		respondServiceError(c, err, "load_calendar_failed")
		return
	}
	response.RespondOK(c, out)
}

// GET /api/calendar/:date
func (h *CalendarHandler) Day(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	day, ok := parseDate(c, "date", c.Param("date"))
	if !ok {
		return
	}
	if day == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_date", errors.New("date is required"))
		return
	}
	out, err := h.calendar.Day(c.Request.Context(), userID, *day)
	if err != nil {
		respondServiceError(c, err, "load_calendar_failed")
		return
	}
	response.RespondOK(c, out)
}
