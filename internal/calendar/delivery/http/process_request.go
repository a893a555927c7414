package http

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func (h *handler) processTokenReq(c *gin.Context) (tokenReq, error) {
	var req tokenReq
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		return req, err
	}
	req.UserID = c.Param("user_id")
	if err := req.validate(); err != nil {
		return req, err
	}
	return req, nil
}

func (h *handler) processCallbackReq(c *gin.Context) (callbackReq, error) {
	var req callbackReq
	if err := c.ShouldBindQuery(&req); err != nil {
		return req, err
	}
	return req, nil
}
