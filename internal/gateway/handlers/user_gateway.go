package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	user "farmagro-system/internal/services/user/handler"
)

type UserHTTPHandler struct {
	user *user.UserHandler
}

func NewUserHTTPHandler(userHandler *user.UserHandler) *UserHTTPHandler {
	return &UserHTTPHandler{
		user: userHandler,
	}
}

func (s *UserHTTPHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := s.user.Register(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, created)
}

func (s *UserHTTPHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := s.user.Login(c.Request.Context(), req)
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, resp)
}

// Me returns the profile of the authenticated user. The JWT middleware puts
// the user id in the context.
func (s *UserHTTPHandler) Me(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		fail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, ok := userID.(int64)
	if !ok {
		fail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	profile, err := s.user.GetUser(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}

	success(c, profile)
}
