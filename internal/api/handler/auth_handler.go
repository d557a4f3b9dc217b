package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/shipment-tracker/internal/api/presenter"
	"github.com/99minutos/shipment-tracker/internal/core/ports"
	"github.com/99minutos/shipment-tracker/pkg/wire"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account and signs it in.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      wire.RegisterRequest  true  "User registration details"
// @Success      201   {object}  wire.Envelope[wire.Session]
// @Failure      400   {object}  wire.Envelope[any]
// @Failure      409   {object}  wire.Envelope[any]
// @Failure      422   {object}  wire.Envelope[any]
// @Router       /users/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req wire.RegisterRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, wire.OK(wire.Session{User: presenter.User(user), Token: token}))
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      wire.LoginRequest  true  "Login credentials"
// @Success      200   {object}  wire.Envelope[wire.Session]
// @Failure      400   {object}  wire.Envelope[any]
// @Failure      401   {object}  wire.Envelope[any]
// @Router       /users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req wire.LoginRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, wire.OK(wire.Session{User: presenter.User(user), Token: token}))
}
