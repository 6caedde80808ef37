package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chefmenu/internal/session"
)

const sessionKey = "chefmenu.session"

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "username and password are required"})
		return
	}
	var s session.Session
	if err := h.gate.Attempt(c.Request.Context(), &s, req.Username, req.Password); err != nil {
		h.fail(c, err)
		return
	}
	token, err := h.tokens.Issue(&s)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log.WithField("user", s.Username).Info("login succeeded")
	ok(c, http.StatusOK, gin.H{"token": token, "expires_in": int(h.tokens.TTL().Seconds())})
}

// logout has nothing to revoke: tokens are stateless and the client drops it.
func (h *handler) logout(c *gin.Context) {
	s := currentSession(c)
	user := s.Username
	h.gate.Logout(&s)
	h.log.WithField("user", user).Info("logout")
	ok(c, http.StatusOK, gin.H{"logged_in": s.LoggedIn})
}

func (h *handler) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			h.fail(c, session.ErrLoginRequired)
			c.Abort()
			return
		}
		s, err := h.tokens.Verify(strings.TrimSpace(raw))
		if err != nil {
			h.fail(c, err)
			c.Abort()
			return
		}
		if err := s.RequireLogin(); err != nil {
			h.fail(c, err)
			c.Abort()
			return
		}
		c.Set(sessionKey, s)
		c.Next()
	}
}

func currentSession(c *gin.Context) session.Session {
	if v, exists := c.Get(sessionKey); exists {
		if s, isSession := v.(session.Session); isSession {
			return s
		}
	}
	return session.Session{}
}
