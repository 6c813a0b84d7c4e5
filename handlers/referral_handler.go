// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"context"
	"net/http"
	"strings"

	"megatron-server/db"
	"megatron-server/waitlist"

	"github.com/labstack/echo/v4"
)

// ReferralStatsHandler godoc
// @Summary      Referral stats for a code
// @Description  Returns how many signups were attributed to a referral code.
// @Tags         waitlist
// @Produce      json
// @Param        code  path  string  true  "Referral code"
// @Success      200 {object} ReferralStatsResponse  "Stats retrieved"
// @Failure      400 {object} ErrorResponse          "Missing code"
// @Failure      500 {object} ErrorResponse          "Internal server error"
// @Router       /v1/waitlist/referrals/{code} [get]
func ReferralStatsHandler(c echo.Context) error {
	logger := c.Logger()

	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Referral code is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	count, err := waitlist.CountReferrals(ctx, db.Conn, code)
	if err != nil {
		logger.Errorf("Failed to count referrals for %s: %v", code, err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}

	return c.JSON(http.StatusOK, ReferralStatsResponse{
		ReferralCode: code,
		SignupCount:  count,
	})
}
