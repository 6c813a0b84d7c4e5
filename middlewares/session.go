// SPDX-License-Identifier: GPL-3.0-only

package middlewares

import (
	"errors"
	"net/http"

	"megatron-server/commons"
	"megatron-server/handlers"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// VerifySessionMiddleware checks the session cookie issued after an
// OAuth sign-in and exposes the identity on the context.
func VerifySessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := c.Logger()

		cookie, err := c.Cookie(handlers.SessionCookie)
		if err != nil || cookie.Value == "" {
			logger.Warn("Session cookie missing")
			return &echo.HTTPError{
				Code:    http.StatusUnauthorized,
				Message: "Sign-in required",
			}
		}

		token, err := jwt.Parse(cookie.Value, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(commons.GetEnv("AUTH_SECRET", "default_very_secret_key")), nil
		})
		if err != nil || !token.Valid {
			logger.Warn("Session token invalid:", err)
			return &echo.HTTPError{
				Code:    http.StatusUnauthorized,
				Message: "Sign-in required",
			}
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return &echo.HTTPError{
				Code:    http.StatusUnauthorized,
				Message: "Sign-in required",
			}
		}

		if email, ok := claims["sub"].(string); ok {
			c.Set("session_email", email)
		}
		if name, ok := claims["name"].(string); ok {
			c.Set("session_name", name)
		}

		return next(c)
	}
}
