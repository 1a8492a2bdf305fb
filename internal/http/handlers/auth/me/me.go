// Package me реализует HTTP-обработчик, возвращающий текущего пользователя.
package me

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wellness-auth/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wellness-auth/internal/http/response"
)

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response{data=models.Identity}
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Router /me [get]
func ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity := middlewarectx.IdentityFromContext(r.Context())
	if identity == nil {
		response.JSONError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(identity))
}
