// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// MeHandler godoc
// @Summary      Current session
// @Description  Returns the signed-in user's email and name.
// @Tags         auth
// @Produce      json
// @Success      200 {object} SessionResponse    "Session retrieved"
// @Failure      401 {object} echo.HTTPError     "No valid session"
// @Router       /v1/auth/me [get]
func MeHandler(c echo.Context) error {
	email, _ := c.Get("session_email").(string)
	name, _ := c.Get("session_name").(string)

	return c.JSON(http.StatusOK, SessionResponse{
		Email: email,
		Name:  name,
	})
}
