package http

import (
	"strings"
	"time"

	"task-scheduling-assistant/internal/model"
)

// tokenReq carries a token obtained out of band (e.g. by a companion app).
type tokenReq struct {
	UserID       string    `json:"-"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
}

func (r tokenReq) validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errMissingUserID
	}
	if r.AccessToken == "" {
		return errMissingToken
	}
	return nil
}

func (r tokenReq) toToken() model.CalendarToken {
	tokenType := r.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return model.CalendarToken{
		UserID:       r.UserID,
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    tokenType,
		Expiry:       r.Expiry,
	}
}

type callbackReq struct {
	Code  string `form:"code" binding:"required"`
	State string `form:"state" binding:"required"`
}

type statusResp struct {
	Connected bool   `json:"connected"`
	AuthURL   string `json:"auth_url,omitempty"`
}
