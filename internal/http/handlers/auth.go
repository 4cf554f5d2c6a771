package handlers

import (
	"net/http"
	"time"

	"tripplanner/internal/http/middleware"
	"tripplanner/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 12 * time.Hour

type tokenRequest struct {
	Password string `json:"password"`
}

// POST /api/admin/token
func AdminToken(c *gin.Context) {
	var req tokenRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := current()
	if svc.AdminPasswordHash == "" || len(svc.JWTSecret) == 0 {
		respondError(c, http.StatusServiceUnavailable, "admin_disabled", "admin access is not configured")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(svc.AdminPasswordHash), []byte(req.Password)); err != nil {
		utils.LogEventCtx(c.Request.Context(), "auth", "token_denied", "password mismatch")
		respondError(c, http.StatusUnauthorized, "unauthorized", "invalid password")
		return
	}

	ttl := svc.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "admin",
		"role": middleware.AdminRole,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString(svc.JWTSecret)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "token_failed", "could not sign token")
		return
	}
	utils.LogEventCtx(c.Request.Context(), "auth", "token_issued", "ttl="+ttl.String())
	c.JSON(http.StatusOK, gin.H{"token": signed, "expires_at": now.Add(ttl).UTC()})
}
