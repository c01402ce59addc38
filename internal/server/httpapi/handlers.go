package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/gin-gonic/gin"
)

const (
	msgBadCredentials = "Incorrect email or password"
	msgInvalidToken   = "Invalid token"
	msgAlreadyExists  = "Username or email already registered"
	msgInternal       = "Internal server error"
)

type registerRequest struct {
	Username string `json:"username" form:"username" binding:"required,min=4,max=15"`
	Email    string `json:"email" form:"email" binding:"required,email,max=30"`
	Password string `json:"password" form:"password" binding:"required,min=6,max=20"`
}

// loginRequest accepts JSON or an OAuth2 password-grant style form.
type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type adminLoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

func detail(msg string) gin.H {
	return gin.H{"detail": msg}
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, detail(err.Error()))
		return
	}

	p, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			c.JSON(http.StatusUnprocessableEntity, detail(err.Error()))
		case errors.Is(err, common.ErrorAlreadyExists):
			c.JSON(http.StatusConflict, detail(msgAlreadyExists))
		default:
			h.internal(c, "register failed", err)
		}
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, detail(err.Error()))
		return
	}

	res, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.loginFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) adminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, detail(err.Error()))
		return
	}

	res, err := h.users.AdminLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.loginFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) loginFailed(c *gin.Context, err error) {
	if errors.Is(err, common.ErrIncorrectEmailOrPassword) {
		c.Header("WWW-Authenticate", common.BearerScheme)
		c.JSON(http.StatusUnauthorized, detail(msgBadCredentials))
		return
	}
	h.internal(c, "login failed", err)
}

func (h *Handler) me(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, detail(msgInvalidToken))
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) internal(c *gin.Context, msg string, err error) {
	h.logger.Error(c.Request.Context(), msg, "error", err)
	c.JSON(http.StatusInternalServerError, detail(msgInternal))
}
