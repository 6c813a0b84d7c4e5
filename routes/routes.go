// SPDX-License-Identifier: GPL-3.0-only

package routes

import (
	"megatron-server/commons"
	"megatron-server/handlers"
	"megatron-server/middlewares"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	commons.Logger.Debug("Registering v1 routes")

	e.GET("/", handlers.ServeLandingPage)
	e.GET("/static/*", handlers.ServeStaticFile)

	api_v1 := e.Group("/v1")
	api_v1.POST("/waitlist", handlers.JoinWaitlistHandler)
	api_v1.GET("/waitlist/referrals/:code", handlers.ReferralStatsHandler)
	api_v1.GET("/auth/google", handlers.GoogleAuthHandler)
	api_v1.GET("/auth/google/callback", handlers.GoogleCallbackHandler)
	api_v1.GET("/auth/me", handlers.MeHandler, middlewares.VerifySessionMiddleware)

	commons.Logger.Info("v1 routes registered successfully")
}
