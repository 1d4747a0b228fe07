package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/strokecovery/strokecovery-backend/internal/http/response"
	"github.com/strokecovery/strokecovery-backend/internal/pkg/dates"
	"github.com/strokecovery/strokecovery-backend/internal/platform/apierr"
	"github.com/strokecovery/strokecovery-backend/internal/platform/ctxutil"
	"github.com/strokecovery/strokecovery-backend/internal/services"
)

// requireUser returns the authenticated user id, or writes a 401 and false.
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("unauthorized"))
		return uuid.Nil, false
	}
	return rd.UserID, true
}

// respondServiceError renders an *apierr.Error as-is and anything else as a 500 with fallbackCode.
func respondServiceError(c *gin.Context, err error, fallbackCode string) {
	if ae, ok := apierr.As(err); ok {
		response.RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}
	response.RespondError(c, http.StatusInternalServerError, fallbackCode, err)
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, fmt.Errorf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// queryInt returns def when the parameter is absent and writes a 400 when it is not an integer.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, fmt.Errorf("%s must be an integer", name))
		return 0, false
	}
	return v, true
}

// parseDate parses an optional YYYY-MM-DD value from a query or body field.
func parseDate(c *gin.Context, field, raw string) (*time.Time, bool) {
	t, err := dates.ParseOptional(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+field, err)
		return nil, false
	}
	return t, true
}

func parseDatePtr(c *gin.Context, field string, raw *string) (*time.Time, bool) {
	if raw == nil {
		return nil, true
	}
	return parseDate(c, field, *raw)
}

// listQuery reads start_date, end_date, limit and offset.
func listQuery(c *gin.Context) (services.ListQuery, bool) {
	var q services.ListQuery
	var ok bool
	if q.From, ok = parseDate(c, "start_date", c.Query("start_date")); !ok {
		return q, false
	}
	if q.To, ok = parseDate(c, "end_date", c.Query("end_date")); !ok {
		return q, false
	}
	if q.Limit, ok = queryInt(c, "limit", 0); !ok {
		return q, false
	}
	if q.Offset, ok = queryInt(c, "offset", 0); !ok {
		return q, false
	}
	return q, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}
