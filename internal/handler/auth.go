package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rfid-attendance/internal/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	State auth.State  `json:"state"`
	User  *auth.User  `json:"user,omitempty"`
	Token *auth.Token `json:"token,omitempty"`
	Hint  *loginHint  `json:"hint,omitempty"`
}

type loginHint struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login signs the user in and returns a bearer token for the new session.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.Metrics.ObserveLogin("failure")
		h.respondError(c, err)
		return
	}
	h.Metrics.ObserveLogin("success")
	h.respondSession(c, session)
}

// Logout ends the current session. Every token issued for it stops working.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context()); err != nil {
		h.logger(c).Warn("logout: persisted session not cleared", zap.Error(err))
	}
	c.JSON(http.StatusOK, sessionResponse{State: auth.StateAnonymous})
}

// Session reports who is signed in. A restored session gets a fresh token so
// a reloaded client stays signed in; an anonymous one gets the demo login.
func (h *Handler) Session(c *gin.Context) {
	session, ok := h.Auth.Current()
	if !ok {
		resp := sessionResponse{State: auth.StateAnonymous}
		if len(auth.DemoCredentials) > 0 {
			demo := auth.DemoCredentials[0]
			resp.Hint = &loginHint{Username: demo.Username, Password: demo.Password}
		}
		c.JSON(http.StatusOK, resp)
		return
	}
	h.respondSession(c, session)
}

func (h *Handler) respondSession(c *gin.Context, session auth.Session) {
	token, err := auth.Issue(session, h.settings.JWTIssuer, h.settings.JWTSigningKey, h.settings.AccessTTL)
	if err != nil {
		h.respondError(c, err)
		return
	}
	user := session.User
	c.JSON(http.StatusOK, sessionResponse{State: auth.StateAuthenticated, User: &user, Token: &token})
}
