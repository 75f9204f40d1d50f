package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bryanlu3000/sign-in-demo/internal/config"
	"github.com/bryanlu3000/sign-in-demo/internal/tokens"
	"github.com/bryanlu3000/sign-in-demo/internal/users"
	"github.com/bryanlu3000/sign-in-demo/pkg/logger"
	"github.com/bryanlu3000/sign-in-demo/pkg/metrics"
	"github.com/bryanlu3000/sign-in-demo/pkg/middleware"
)

// refreshCookie is the name of the HTTP-only cookie carrying the refresh token
const refreshCookie = "jwt"

// CredentialsRequest is the body of register and login
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg      *config.Config
	usersSvc *users.Service
}

func NewAuthHandler(cfg *config.Config, u *users.Service) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u}
}

// Register routes under /api
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/api")
	a.POST("/register", h.SignUp)
	a.POST("/login", h.SignIn)
	a.GET("/refresh", h.Refresh)
	a.GET("/logout", h.Logout)
	a.GET("/users", middleware.RequireAccessToken(h.cfg.JWT.AccessSecret), h.ListUsers)
}

// SignUp creates a new user record with a bcrypt-hashed password
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required."})
		return
	}

	err := h.usersSvc.Register(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == users.ErrDuplicateEmail:
		metrics.Registrations.WithLabelValues("duplicate").Inc()
		c.JSON(http.StatusConflict, gin.H{"message": "The email has already existed, please change to another one."})
		return
	case err != nil:
		metrics.Registrations.WithLabelValues("error").Inc()
		logger.Errorf("register failed for %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	metrics.Registrations.WithLabelValues("success").Inc()
	c.JSON(http.StatusCreated, gin.H{"message": "Register Success"})
}

// SignIn verifies credentials, mints the token pair, persists the refresh
// token on the user record and sets it as an HTTP-only cookie.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required."})
		return
	}

	u, err := h.usersSvc.Authenticate(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == users.ErrInvalidCredentials:
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		c.Status(http.StatusUnauthorized)
		return
	case err != nil:
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		logger.Errorf("login lookup failed for %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	access, err := tokens.GenerateAccessToken(h.cfg, u.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	refresh, err := tokens.GenerateRefreshToken(h.cfg, u.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	// Overwrites any previous refresh token: logging in elsewhere invalidates
	// the earlier session's refresh capability. Concurrent logins race here,
	// last write wins.
	if err := h.usersSvc.SetRefreshToken(c.Request.Context(), u.Email, refresh); err != nil {
		logger.Errorf("persisting refresh token failed for %s: %v", u.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	h.setRefreshCookie(c, refresh, int(h.cfg.JWT.RefreshTokenTTL.Seconds()))
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	c.JSON(http.StatusCreated, gin.H{"accessToken": access})
}

// Refresh trades the refresh cookie for a new access token. The refresh token
// itself is not rotated; the same cookie stays valid until its own expiry.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie(refreshCookie)
	if err != nil || refresh == "" {
		c.Status(http.StatusUnauthorized)
		return
	}

	u, err := h.usersSvc.FindByRefreshToken(c.Request.Context(), refresh)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if u == nil {
		metrics.TokenRefreshes.WithLabelValues("rejected").Inc()
		c.Status(http.StatusForbidden)
		return
	}

	email, err := tokens.VerifyToken(refresh, h.cfg.JWT.RefreshSecret)
	if err != nil || email != u.Email {
		metrics.TokenRefreshes.WithLabelValues("rejected").Inc()
		c.Status(http.StatusForbidden)
		return
	}

	access, err := tokens.GenerateAccessToken(h.cfg, u.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{"accessToken": access})
}

// Logout clears the stored refresh token and the cookie. Always 204, so a
// second logout with the same (now dangling) cookie succeeds too.
func (h *AuthHandler) Logout(c *gin.Context) {
	refresh, err := c.Cookie(refreshCookie)
	if err != nil || refresh == "" {
		c.Status(http.StatusNoContent)
		return
	}

	u, err := h.usersSvc.FindByRefreshToken(c.Request.Context(), refresh)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if u != nil {
		if err := h.usersSvc.ClearRefreshToken(c.Request.Context(), u.Email); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
	}

	h.setRefreshCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

// ListUsers is the protected demo endpoint: all registered emails, email field only
func (h *AuthHandler) ListUsers(c *gin.Context) {
	emails, err := h.usersSvc.ListEmails(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	out := make([]gin.H, 0, len(emails))
	for _, e := range emails {
		out = append(out, gin.H{"email": e})
	}
	c.JSON(http.StatusOK, out)
}

// setRefreshCookie sets (or with maxAge<0 clears) the refresh cookie with the
// flags the browser needs for cross-site use: HttpOnly, Secure, SameSite=None.
func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(refreshCookie, value, maxAge, "/", "", true, true)
}
