package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/strokecovery/strokecovery-backend/internal/http/response"
	"github.com/strokecovery/strokecovery-backend/internal/services"
)

type MedicineInfoHandler struct {
	info services.MedicineInfoService
}

func NewMedicineInfoHandler(info services.MedicineInfoService) *MedicineInfoHandler {
	return &MedicineInfoHandler{info: info}
}

// GET /api/medicine-info/lookup?name=
func (h *MedicineInfoHandler) Lookup(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	info, err := h.info.GetOrCreate(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondServiceError(c, err, "lookup_failed")
		return
	}
	response.RespondOK(c, info)
}

// GET /api/medicine-info/search?q=
func (h *MedicineInfoHandler) Search(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	out, err := h.info.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondServiceError(c, err, "search_failed")
		return
	}
	response.RespondOK(c, out)
}
