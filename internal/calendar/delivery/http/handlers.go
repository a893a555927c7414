package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"task-scheduling-assistant/internal/calendar"
	"task-scheduling-assistant/pkg/response"
)

// Status godoc
// @Summary     Calendar connection status
// @Description Reports whether the user has a stored calendar token, with a consent URL when not.
// @Tags        Calendar
// @Produce     json
// @Param       user_id path string true "User ID"
// @Success     200 {object} statusResp
// @Failure     500 {object} response.Resp "Internal Server Error"
// @Router      /api/v1/users/{user_id}/calendar [GET]
func (h *handler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("user_id")

	connected, err := h.account.IsConnected(ctx, userID)
	if err != nil {
		h.l.Errorf(ctx, "calendar.http.Status: %v", err)
		response.Error(c, h.mapError(err), nil)
		return
	}

	resp := statusResp{Connected: connected}
	if !connected {
		u, err := h.account.AuthCodeURL(userID)
		if err != nil && !errors.Is(err, calendar.ErrOAuthDisabled) {
			h.l.Warnf(ctx, "calendar.http.Status: auth url: %v", err)
		}
		resp.AuthURL = u
	}
	response.OK(c, resp)
}

// PutToken godoc
// @Summary     Store a calendar token
// @Description Connects the user's calendar with an OAuth2 token obtained elsewhere.
// @Tags        Calendar
// @Accept      json
// @Produce     json
// @Param       user_id path string   true "User ID"
// @Param       body    body tokenReq true "OAuth2 token"
// @Success     200 {object} statusResp
// @Failure     400 {object} response.Resp "Bad Request"
// @Failure     500 {object} response.Resp "Internal Server Error"
// @Router      /api/v1/users/{user_id}/calendar/token [PUT]
func (h *handler) PutToken(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processTokenReq(c)
	if err != nil {
		response.Error(c, err, nil)
		return
	}

	if err := h.account.Connect(ctx, req.toToken()); err != nil {
		h.l.Errorf(ctx, "calendar.http.PutToken: %v", err)
		response.Error(c, h.mapError(err), nil)
		return
	}
	response.OK(c, statusResp{Connected: true})
}

// OAuthCallback godoc
// @Summary     OAuth redirect target
// @Description Exchanges the authorization code; the OAuth state is the user id.
// @Tags        Calendar
// @Produce     json
// @Param       code  query string true "Authorization code"
// @Param       state query string true "User ID"
// @Success     200 {object} statusResp
// @Failure     400 {object} response.Resp "Bad Request"
// @Failure     404 {object} response.Resp "Consent flow not configured"
// @Router      /api/v1/calendar/oauth/callback [GET]
func (h *handler) OAuthCallback(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processCallbackReq(c)
	if err != nil {
		response.Error(c, err, nil)
		return
	}

	if err := h.account.Exchange(ctx, req.State, req.Code); err != nil {
		h.l.Errorf(ctx, "calendar.http.OAuthCallback: user=%s: %v", req.State, err)
		response.Error(c, h.mapError(err), nil)
		return
	}
	response.OK(c, statusResp{Connected: true})
}
