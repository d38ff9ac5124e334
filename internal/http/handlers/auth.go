package handlers

import (
	"net/http"
	"strings"

	"elitetransport/internal/domain/models"
	"elitetransport/internal/http/middleware"
	"elitetransport/internal/services"
	"elitetransport/internal/utils"

	"github.com/gin-gonic/gin"
)

func sessionResponse(c *gin.Context, auth services.AuthService, user models.User) {
	token, expiresAt, err := auth.IssueSession(user.ID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": utils.FormatDateTime(expiresAt),
		"user":       user,
		"isAdmin":    env.IsAdminEmail(user.Email),
	})
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/signin
func SignIn(c *gin.Context) {
	var req signInRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	auth := AuthService()
	user, err := auth.SignIn(req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	authLog(c, "signin", user.Email)
	sessionResponse(c, auth, user)
}

type signUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// POST /api/auth/signup
func SignUp(c *gin.Context) {
	var req signUpRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	auth := AuthService()
	user, err := auth.SignUp(req.Email, req.Password, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	authLog(c, "signup", user.Email)
	sessionResponse(c, auth, user)
}

type googleRequest struct {
	Mode string `json:"mode"`
	services.GoogleClaims
}

// POST /api/auth/google
func GoogleAuth(c *gin.Context) {
	var req googleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	mode := strings.TrimSpace(strings.ToLower(req.Mode))
	if mode == "" {
		mode = "signin"
	}

	auth := AuthService()
	user, err := auth.Google(mode, req.GoogleClaims)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	authLog(c, "google_"+mode, user.Email)
	sessionResponse(c, auth, user)
}

// POST /api/auth/verify restores a client session from a stored token.
func VerifySession(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if !BindJSONOrError(c, &req) {
		return
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	user, err := AuthService().VerifyToken(token)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":   true,
		"user":    user,
		"isAdmin": env.IsAdminEmail(user.Email),
	})
}

func authLog(c *gin.Context, action, email string) {
	utils.LogEvent(middleware.GetRequestID(c), "auth", action, "email="+email)
}
