// Package controllers translates HTTP requests into service calls and
// service results into response envelopes. No domain logic lives here.
package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/kalakriti/app/services"
	"github.com/shashiranjanraj/kalakriti/pkg/bind"
	"github.com/shashiranjanraj/kalakriti/pkg/middleware"
	"github.com/shashiranjanraj/kalakriti/pkg/response"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if !bind.Request(w, r, &body) {
		return
	}

	user, tokens, err := c.auth.Register(r.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, map[string]any{"user": user, "tokens": tokens})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if !bind.Request(w, r, &body) {
		return
	}

	user, tokens, err := c.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, map[string]any{"user": user, "tokens": tokens})
}

func (c *AuthController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body services.ProfileInput
	if !bind.Request(w, r, &body) {
		return
	}

	user, err := c.auth.UpdateProfile(r.Context(), userID, body)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, user)
}

func (c *AuthController) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	user, err := c.auth.Profile(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, user)
}
