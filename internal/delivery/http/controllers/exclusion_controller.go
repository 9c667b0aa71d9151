package controllers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"secretsanta/internal/delivery/http/helpers"
	"secretsanta/internal/delivery/http/middleware"
	"secretsanta/internal/domain"
)

// CreateExclusionRequest is the request body for POST /groups/{groupID}/exclusions.
type CreateExclusionRequest struct {
	BlockerParticipantID string `json:"blocker_participant_id"`
	BlockedParticipantID string `json:"blocked_participant_id"`
	Bidirectional        bool   `json:"bidirectional"`
}

// Validate implements Validator.
func (c CreateExclusionRequest) Validate() []string {
	var errs []string
	if c.BlockerParticipantID == "" {
		errs = append(errs, "blocker_participant_id is required")
	} else if uuid.Validate(c.BlockerParticipantID) != nil {
		errs = append(errs, "blocker_participant_id must be a UUID")
	}
	if c.BlockedParticipantID == "" {
		errs = append(errs, "blocked_participant_id is required")
	} else if uuid.Validate(c.BlockedParticipantID) != nil {
		errs = append(errs, "blocked_participant_id must be a UUID")
	}
	if len(errs) == 0 && c.BlockerParticipantID == c.BlockedParticipantID {
		errs = append(errs, "a participant cannot exclude themselves")
	}
	return errs
}

// CreateExclusionSuccessResponse is the success response envelope for POST /groups/{groupID}/exclusions (201).
type CreateExclusionSuccessResponse struct {
	Data  []*domain.ExclusionRule `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// ListExclusionsResponse is the data payload for GET /groups/{groupID}/exclusions (200).
type ListExclusionsResponse struct {
	Items      []*domain.ExclusionRule `json:"items"`
	Pagination helpers.PaginationMeta  `json:"pagination"`
}

// ListExclusionsSuccessResponse is the success response envelope for GET /groups/{groupID}/exclusions (200).
type ListExclusionsSuccessResponse struct {
	Data  ListExclusionsResponse `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// DeleteExclusionResponse is the data payload for DELETE /groups/{groupID}/exclusions/{exclusionID} (200).
type DeleteExclusionResponse struct {
	Status string `json:"status"`
}

// SetElfRequest is the request body for PUT /groups/{groupID}/participants/{participantID}/elf.
// A null elf_for_participant_id clears the link.
type SetElfRequest struct {
	ElfForParticipantID *string `json:"elf_for_participant_id"`
}

// Validate implements Validator.
func (c SetElfRequest) Validate() []string {
	if c.ElfForParticipantID != nil && uuid.Validate(*c.ElfForParticipantID) != nil {
		return []string{"elf_for_participant_id must be a UUID or null"}
	}
	return nil
}

// SetElfSuccessResponse is the success response envelope for PUT /groups/{groupID}/participants/{participantID}/elf (200).
type SetElfSuccessResponse struct {
	Data  *domain.Participant `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

type ExclusionController struct {
	Logger  *slog.Logger
	Service domain.ExclusionService
}

func NewExclusionController(logger *slog.Logger, svc domain.ExclusionService) *ExclusionController {
	return &ExclusionController{
		Logger:  logger,
		Service: svc,
	}
}

// List godoc
// @Summary List exclusions of a group
// @Description Returns a paginated list of exclusion rules, including elf-derived ones (origin "elf"). Only the group owner can list.
// @Tags exclusions
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListExclusionsSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups/{groupID}/exclusions [get]
func (c *ExclusionController) List(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}
	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params := helpers.ParsePagination(r)
	list, total, err := c.Service.List(r.Context(), groupID, callerID, params)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "group not found")
		return
	}
	if list == nil {
		list = []*domain.ExclusionRule{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListExclusionsResponse{Items: list, Pagination: meta})
}

// Create godoc
// @Summary Create an exclusion
// @Description Forbids the blocker from drawing the blocked participant. With bidirectional=true the reverse rule is created in the same transaction. Rejected once the group is drawn.
// @Tags exclusions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Param exclusion body CreateExclusionRequest true "Exclusion"
// @Success 201 {object} controllers.CreateExclusionSuccessResponse "data contains the created rules"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict or ALREADY_DRAWN"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups/{groupID}/exclusions [post]
func (c *ExclusionController) Create(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}
	var req CreateExclusionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	rules, err := c.Service.Create(r.Context(), groupID, callerID, req.BlockerParticipantID, req.BlockedParticipantID, req.Bidirectional)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "group not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, rules)
}

// Delete godoc
// @Summary Delete an exclusion
// @Description Removes a user exclusion. Elf-derived exclusions are managed through the elf endpoint and cannot be deleted here.
// @Tags exclusions
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Param exclusionID path string true "Exclusion ID (UUID)"
// @Success 200 {object} controllers.DeleteExclusionResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (elf-derived) or ALREADY_DRAWN"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups/{groupID}/exclusions/{exclusionID} [delete]
func (c *ExclusionController) Delete(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}
	exclusionID, ok := pathID(w, r, "exclusionID")
	if !ok {
		return
	}
	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Delete(r.Context(), groupID, callerID, exclusionID); err != nil {
		writeServiceError(w, r, c.Logger, err, "exclusion not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteExclusionResponse{Status: "deleted"})
}

// SetElf godoc
// @Summary Set or clear a participant's elf link
// @Description Makes the participant the elf of another participant, or clears the link with null. The helped participant is then never drawn to give to the elf. Rejected once the group is drawn.
// @Tags exclusions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID (UUID)"
// @Param participantID path string true "Participant ID of the elf (UUID)"
// @Param elf body SetElfRequest true "Helped participant, or null"
// @Success 200 {object} controllers.SetElfSuccessResponse "data contains the updated participant"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: ALREADY_DRAWN"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /groups/{groupID}/participants/{participantID}/elf [put]
func (c *ExclusionController) SetElf(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}
	participantID, ok := pathID(w, r, "participantID")
	if !ok {
		return
	}
	var req SetElfRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	p, err := c.Service.SetElf(r.Context(), groupID, callerID, participantID, req.ElfForParticipantID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "group or participant not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, p)
}
