package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/strokecovery/strokecovery-backend/internal/http/response"
	"github.com/strokecovery/strokecovery-backend/internal/services"
)

type StrokeBitesHandler struct {
	bites services.StrokeBitesService
}

func NewStrokeBitesHandler(bites services.StrokeBitesService) *StrokeBitesHandler {
	return &StrokeBitesHandler{bites: bites}
}

// GET /api/stroke-bites/today
func (h *StrokeBitesHandler) Today(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	b, err := h.bites.Today(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "load_bites_failed")
		return
	}
	response.RespondOK(c, newBiteView(b))
}

// POST /api/stroke-bites/generate
func (h *StrokeBitesHandler) Generate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	b, created, err := h.bites.Generate(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "generate_bites_failed")
		return
	}
	if created {
		response.RespondCreated(c, newBiteView(b))
		return
	}
	response.RespondOK(c, newBiteView(b))
}

// POST /api/stroke-bites/answers
func (h *StrokeBitesHandler) SaveAnswers(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req struct {
		BiteID  string `json:"bite_id"`
		Answers []struct {
			CardID        string  `json:"card_id"`
			QuestionText  *string `json:"question_text"`
			SelectedKey   string  `json:"selected_key"`
			SelectedLabel *string `json:"selected_label"`
		} `json:"answers"`
	}
	if !bindJSON(c, &req) {
		return
	}
	biteID, err := uuid.Parse(req.BiteID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_bite_id", err)
		return
	}
	answers := make([]services.BiteAnswerInput, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, services.BiteAnswerInput{
			CardID:        a.CardID,
			QuestionText:  a.QuestionText,
			SelectedKey:   a.SelectedKey,
			SelectedLabel: a.SelectedLabel,
		})
	}
	res, err := h.bites.SaveAnswers(c.Request.Context(), userID, biteID, answers)
	if err != nil {
		respondServiceError(c, err, "save_answers_failed")
		return
	}
	response.RespondCreated(c, res)
}
