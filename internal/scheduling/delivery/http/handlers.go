package http

import (
	"github.com/gin-gonic/gin"

	"task-scheduling-assistant/internal/model"
	"task-scheduling-assistant/internal/scheduling"
	"task-scheduling-assistant/pkg/response"
)

// HandleMessage godoc
// @Summary     Send a reply to the scheduling assistant
// @Description Advances the user's live conversation (confirmation, slot choice, completion check).
// @Tags        Scheduling
// @Accept      json
// @Produce     json
// @Param       body body messageReq true "User reply"
// @Success     200  {object} messageResp
// @Failure     400  {object} response.Resp "Bad Request"
// @Failure     429  {object} response.Resp "Too Many Requests"
// @Failure     500  {object} response.Resp "Internal Server Error"
// @Router      /api/v1/messages [POST]
func (h *handler) HandleMessage(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processMessageReq(c)
	if err != nil {
		response.Error(c, err, nil)
		return
	}

	output, err := h.uc.HandleMessage(ctx, model.Scope{UserID: req.UserID}, req.toInput())
	if err != nil {
		h.l.Errorf(ctx, "uc.HandleMessage: %v", err)
		response.Error(c, h.mapError(err), nil)
		return
	}

	response.OK(c, h.newMessageResp(output))
}

// CreateTask godoc
// @Summary     Create a task and propose a slot
// @Description Stores the task and immediately proposes the best free slot in the user's calendar.
// @Tags        Scheduling
// @Accept      json
// @Produce     json
// @Param       body body createTaskReq true "Task data"
// @Success     200  {object} createTaskResp
// @Failure     400  {object} response.Resp "Bad Request"
// @Failure     500  {object} response.Resp "Internal Server Error"
// @Router      /api/v1/tasks [POST]
func (h *handler) CreateTask(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processCreateTaskReq(c)
	if err != nil {
		response.Error(c, err, nil)
		return
	}

	output, err := h.uc.CreateTask(ctx, model.Scope{UserID: req.UserID}, req.toInput())
	if err != nil {
		h.l.Errorf(ctx, "uc.CreateTask: %v", err)
		response.Error(c, h.mapError(err), nil)
		return
	}

	response.OK(c, h.newCreateTaskResp(output))
}

// ProposeForTask godoc
// @Summary     Propose a slot for an existing task
// @Tags        Scheduling
// @Accept      json
// @Produce     json
// @Param       id   path string     true "Task ID"
// @Param       body body proposeReq true "Owner"
// @Success     200  {object} proposalResp
// @Failure     400  {object} response.Resp "Bad Request"
// @Failure     404  {object} response.Resp "Not Found"
// @Failure     500  {object} response.Resp "Internal Server Error"
// @Router      /api/v1/tasks/{id}/propose [POST]
func (h *handler) ProposeForTask(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processProposeReq(c)
	if err != nil {
		response.Error(c, err, nil)
		return
	}

	output, err := h.uc.ProposeForTask(ctx, model.Scope{UserID: req.UserID}, scheduling.ProposeInput{TaskID: req.TaskID})
	if err != nil {
		h.l.Errorf(ctx, "uc.ProposeForTask: %v", err)
		response.Error(c, h.mapError(err), nil)
		return
	}

	response.OK(c, h.newProposalResp(output))
}

// RespondToEvent godoc
// @Summary     Answer whether a scheduled event was done
// @Description Structured done / not_done / snoozed answer for a scheduled event.
// @Tags        Scheduling
// @Accept      json
// @Produce     json
// @Param       id   path string     true "Scheduled event ID or calendar event ID"
// @Param       body body respondReq true "Answer"
// @Success     200  {object} messageResp
// @Failure     400  {object} response.Resp "Bad Request"
// @Failure     404  {object} response.Resp "Not Found"
// @Failure     500  {object} response.Resp "Internal Server Error"
// @Router      /api/v1/events/{id}/respond [POST]
func (h *handler) RespondToEvent(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processRespondReq(c)
	if err != nil {
		response.Error(c, err, nil)
		return
	}

	output, err := h.uc.RespondToEvent(ctx, model.Scope{UserID: req.UserID}, req.toInput())
	if err != nil {
		h.l.Errorf(ctx, "uc.RespondToEvent: %v", err)
		response.Error(c, h.mapError(err), nil)
		return
	}

	response.OK(c, h.newMessageResp(output))
}

// Conversation godoc
// @Summary     Get the user's live conversation
// @Tags        Scheduling
// @Produce     json
// @Param       user_id path string true "User ID"
// @Success     200 {object} conversationResp
// @Failure     500 {object} response.Resp "Internal Server Error"
// @Router      /api/v1/users/{user_id}/conversation [GET]
func (h *handler) Conversation(c *gin.Context) {
	ctx := c.Request.Context()

	st, found, err := h.uc.CurrentState(ctx, model.Scope{UserID: c.Param("user_id")})
	if err != nil {
		h.l.Errorf(ctx, "uc.CurrentState: %v", err)
		response.Error(c, h.mapError(err), nil)
		return
	}

	response.OK(c, h.newConversationResp(st, found))
}

// UpdatePreferences godoc
// @Summary     Update scheduling preferences
// @Description Partial update of timezone, language, working hours, allowed days and notifications.
// @Tags        Scheduling
// @Accept      json
// @Produce     json
// @Param       user_id path string         true "User ID"
// @Param       body    body preferencesReq true "Fields to update"
// @Success     200 {object} preferencesResp
// @Failure     400 {object} response.Resp "Bad Request"
// @Failure     500 {object} response.Resp "Internal Server Error"
// @Router      /api/v1/users/{user_id}/preferences [PUT]
func (h *handler) UpdatePreferences(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processPreferencesReq(c)
	if err != nil {
		response.Error(c, err, nil)
		return
	}

	prefs, err := h.uc.UpdatePreferences(ctx, model.Scope{UserID: req.UserID}, req.toInput())
	if err != nil {
		h.l.Errorf(ctx, "uc.UpdatePreferences: %v", err)
		response.Error(c, h.mapError(err), nil)
		return
	}

	response.OK(c, h.newPreferencesResp(prefs))
}
