package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/strokecovery/strokecovery-backend/internal/http/response"
	"github.com/strokecovery/strokecovery-backend/internal/services"
)

type ProfileHandler struct {
	profiles services.ProfileService
}

func NewProfileHandler(profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

type profileRequest struct {
	StrokeDate          *string   `json:"stroke_date"`
	StrokeType          *string   `json:"stroke_type"`
	AffectedSide        *string   `json:"affected_side"`
	CurrentTherapies    *[]string `json:"current_therapies"`
	OnboardingCompleted *bool     `json:"onboarding_completed"`
}

func (r profileRequest) input(c *gin.Context) (services.ProfileInput, bool) {
	in := services.ProfileInput{
		StrokeType:          r.StrokeType,
		AffectedSide:        r.AffectedSide,
		OnboardingCompleted: r.OnboardingCompleted,
	}
	var ok bool
	if in.StrokeDate, ok = parseDatePtr(c, "stroke_date", r.StrokeDate); !ok {
		return in, false
	}
	if r.CurrentTherapies != nil {
		in.CurrentTherapies = *r.CurrentTherapies
		in.TherapiesSet = true
	}
	return in, true
}

// GET /api/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	p, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "load_profile_failed")
		return
	}
	response.RespondOK(c, newProfileView(p))
}

// GET /api/profile/check
func (h *ProfileHandler) Check(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	st, err := h.profiles.Check(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "check_profile_failed")
		return
	}
	response.RespondOK(c, st)
}

// PUT /api/profile
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req profileRequest
	if !bindJSON(c, &req) {
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}
	p, err := h.profiles.Update(c.Request.Context(), userID, in)
	if err != nil {
		respondServiceError(c, err, "update_profile_failed")
		return
	}
	response.RespondOK(c, newProfileView(p))
}

// POST /api/profile/onboarding
func (h *ProfileHandler) Onboarding(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req profileRequest
	if !bindJSON(c, &req) {
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}
	p, created, err := h.profiles.CompleteOnboarding(c.Request.Context(), userID, in)
	if err != nil {
		respondServiceError(c, err, "onboarding_failed")
		return
	}
	if created {
		response.RespondCreated(c, newProfileView(p))
		return
	}
	response.RespondOK(c, newProfileView(p))
}
