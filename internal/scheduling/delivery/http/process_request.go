package http

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// Bodies are bound with ShouldBindBodyWith because the rate limiter may already have read them.

func (h *handler) processMessageReq(c *gin.Context) (messageReq, error) {
	var req messageReq
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		return req, err
	}
	return req, nil
}

func (h *handler) processCreateTaskReq(c *gin.Context) (createTaskReq, error) {
	var req createTaskReq
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		return req, err
	}
	return req, nil
}

// processProposeReq binds the body + URI param.
func (h *handler) processProposeReq(c *gin.Context) (proposeReq, error) {
	var req proposeReq
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		return req, err
	}
	req.TaskID = c.Param("id")
	return req, nil
}

func (h *handler) processRespondReq(c *gin.Context) (respondReq, error) {
	var req respondReq
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		return req, err
	}
	req.EventID = c.Param("id")
	return req, nil
}

func (h *handler) processPreferencesReq(c *gin.Context) (preferencesReq, error) {
	var req preferencesReq
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		return req, err
	}
	req.UserID = c.Param("user_id")
	return req, nil
}
