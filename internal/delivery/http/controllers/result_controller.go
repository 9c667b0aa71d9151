package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"secretsanta/internal/delivery/http/helpers"
	"secretsanta/internal/delivery/http/middleware"
	"secretsanta/internal/domain"
)

// GetResultSuccessResponse is the success response envelope for GET /groups/{groupID}/participants/{participantID}/result (200).
type GetResultSuccessResponse struct {
	Data  *domain.ParticipantResult `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

type ResultController struct {
	Logger  *slog.Logger
	Service domain.ResultService
}

func NewResultController(logger *slog.Logger, svc domain.ResultService) *ResultController {
	return &ResultController{
		Logger:  logger,
		Service: svc,
	}
}

// GetResult godoc
// @Summary Get whom a participant gives to
// @Description Returns the receiver of one participant. Allowed for the participant's own user, the user of that participant's elf, or with the participant's access token in X-Participant-Token.
// @Tags draw
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Param participantID path string true "Participant ID (UUID)"
// @Param X-Participant-Token header string false "Participant access token"
// @Success 200 {object} controllers.GetResultSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not drawn yet)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups/{groupID}/participants/{participantID}/result [get]
func (c *ResultController) GetResult(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}
	participantID, ok := pathID(w, r, "participantID")
	if !ok {
		return
	}
	var viewer domain.ResultViewer
	viewer.UserID, _ = middleware.UserIDFromContext(r.Context())
	viewer.AccessToken = strings.TrimSpace(r.Header.Get(middleware.ParticipantTokenHeader))
	if viewer.UserID == "" && viewer.AccessToken == "" {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	result, err := c.Service.GetResult(r.Context(), groupID, participantID, viewer)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "group or participant not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
