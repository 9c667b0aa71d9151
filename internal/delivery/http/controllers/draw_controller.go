package controllers

import (
	"log/slog"
	"net/http"

	"secretsanta/internal/delivery/http/helpers"
	"secretsanta/internal/delivery/http/middleware"
	"secretsanta/internal/domain"
)

// ValidateDrawSuccessResponse is the success response envelope for POST /groups/{groupID}/draw/validate (200).
type ValidateDrawSuccessResponse struct {
	Data  *domain.DrawValidation `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// ExecuteDrawSuccessResponse is the success response envelope for POST /groups/{groupID}/draw/execute (200).
type ExecuteDrawSuccessResponse struct {
	Data  *domain.DrawOutcome `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// DrawStatusSuccessResponse is the success response envelope for GET /groups/{groupID}/draw (200).
type DrawStatusSuccessResponse struct {
	Data  *domain.GroupDrawState `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

type DrawController struct {
	Logger  *slog.Logger
	Service domain.DrawService
}

func NewDrawController(logger *slog.Logger, svc domain.DrawService) *DrawController {
	return &DrawController{
		Logger:  logger,
		Service: svc,
	}
}

// Validate godoc
// @Summary Check whether the group can be drawn
// @Description Dry run of the draw. Insufficient participants and infeasible exclusions are reported in the body with valid=false, not as errors. Nothing is written. Only the group owner can validate.
// @Tags draw
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Success 200 {object} controllers.ValidateDrawSuccessResponse "data.valid tells whether execute would succeed"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: INVALID_GRAPH"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups/{groupID}/draw/validate [post]
func (c *DrawController) Validate(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}
	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	result, err := c.Service.Validate(r.Context(), groupID, callerID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "group not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// Execute godoc
// @Summary Draw the group
// @Description Draws every participant a receiver and freezes the group. Succeeds at most once per group; concurrent or repeated calls get ALREADY_DRAWN. The response carries the number of assignments, never the assignments themselves. Only the group owner can draw.
// @Tags draw
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Success 200 {object} controllers.ExecuteDrawSuccessResponse "data contains the committed draw state"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: ALREADY_DRAWN"
// @Failure 422 {object} helpers.APIResponse "error.code: INSUFFICIENT_PARTICIPANTS, INFEASIBLE_CONSTRAINTS or INVALID_GRAPH"
// @Failure 500 {object} helpers.APIResponse "error.code: INTERNAL_ERROR, NO_VALID_ASSIGNMENT or internal_error"
// @Router /groups/{groupID}/draw/execute [post]
func (c *DrawController) Execute(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}
	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	outcome, err := c.Service.Execute(r.Context(), groupID, callerID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "group not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, outcome)
}

// Status godoc
// @Summary Get the draw state of a group
// @Description Returns whether the group has been drawn and when. Visible to the owner and to participants.
// @Tags draw
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Success 200 {object} controllers.DrawStatusSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups/{groupID}/draw [get]
func (c *DrawController) Status(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}
	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	state, err := c.Service.Status(r.Context(), groupID, callerID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "group not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, state)
}
