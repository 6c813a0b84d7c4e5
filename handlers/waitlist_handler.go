// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"megatron-server/commons"
	"megatron-server/db"
	"megatron-server/events"
	"megatron-server/models"
	"megatron-server/notifications"
	"megatron-server/platform"
	"megatron-server/platformdb"
	"megatron-server/ratelimit"
	"megatron-server/waitlist"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Limiter guards the signup endpoint. Per-process and best-effort:
// replicas do not share counters. Replaced wholesale in handler tests.
var Limiter = ratelimit.New()

// Events is the optional AMQP publisher, wired in server.go. Nil when
// AMQP_URL is unset.
var Events *events.Publisher

var validate = validator.New()

const storeTimeout = 10 * time.Second

// JoinWaitlistHandler godoc
// @Summary      Join the waitlist
// @Description  Registers an email on the waitlist and returns a referral code.
// @Tags         waitlist
// @Accept       json
// @Produce      json
// @Param        joinRequest  body  JoinWaitlistRequest  true  "Signup payload"
// @Success      200 {object} JoinWaitlistResponse  "Signup accepted"
// @Failure      400 {object} ErrorResponse         "Validation failure"
// @Failure      409 {object} ErrorResponse         "Email already registered"
// @Failure      429 {object} ErrorResponse         "Rate limited"
// @Failure      500 {object} ErrorResponse         "Internal server error"
// @Router       /v1/waitlist [post]
func JoinWaitlistHandler(c echo.Context) error {
	logger := c.Logger()

	ip := clientIP(c)
	if !Limiter.Allow(ip, ratelimit.KindIP) {
		logger.Warnf("IP rate limit exceeded for %s", ip)
		return c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "Too many requests. Please try again later.",
		})
	}

	var req JoinWaitlistRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid waitlist request payload:", err)
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
	}

	if err := validate.Struct(&req); err != nil {
		logger.Debug("Waitlist validation failed:", err)
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
	}

	// Bots fill the hidden website field. Fabricate a success so they
	// cannot tell this path from a real one; nothing is persisted and
	// the email window is not consumed.
	if req.Website != "" {
		logger.Warnf("Honeypot tripped from %s", ip)
		return c.JSON(http.StatusOK, JoinWaitlistResponse{
			Success:      true,
			ReferralCode: "SPAM",
			ReferralUrl:  "",
		})
	}

	if !Limiter.Allow(req.Email, ratelimit.KindEmail) {
		logger.Warnf("Email rate limit exceeded for %s", req.Email)
		return c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "This email was recently submitted. Please try again later.",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	entry, err := waitlist.Join(ctx, db.Conn, waitlist.JoinParams{
		Email:      req.Email,
		Name:       req.Name,
		ReferredBy: req.ReferredBy,
		UserAgent:  c.Request().UserAgent(),
		IP:         ip,
	})
	if err != nil {
		if errors.Is(err, waitlist.ErrDuplicateEmail) {
			return c.JSON(http.StatusConflict, ErrorResponse{
				Error: "This email is already on the waitlist.",
			})
		}
		logger.Errorf("Waitlist store error: %v", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}

	referralURL := siteOrigin(c) + "?ref=" + entry.ReferralCode

	// Shadow provisioning, event publishing and the welcome email are
	// all fire-and-forget: the response never waits on them and their
	// failures never reach the client.
	go finalizeJoin(entry, req.Name, referralURL)

	return c.JSON(http.StatusOK, JoinWaitlistResponse{
		Success:      true,
		Message:      "Welcome to Megatron! 🚀",
		ReferralCode: entry.ReferralCode,
		ReferralUrl:  referralURL,
	})
}

func finalizeJoin(entry *models.WaitlistEntry, name, referralURL string) {
	defer func() {
		if r := recover(); r != nil {
			commons.Logger.Errorf("Panic in signup side effects for %s: %v", entry.Email, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if _, err := platform.EnsureUser(ctx, platformdb.Conn, entry.Email); err != nil {
		commons.Logger.Errorf("Failed to provision platform user for %s: %v", entry.Email, err)
	}

	if err := Events.PublishJoined(ctx, entry); err != nil {
		commons.Logger.Errorf("Failed to publish waitlist.joined for %s: %v", entry.Email, err)
	}

	if err := notifications.SendWaitlistWelcome(entry.Email, name, entry.ReferralCode, referralURL); err != nil {
		commons.Logger.Errorf("Failed to send welcome email to %s: %v", entry.Email, err)
	}
}

// clientIP resolves the caller's address the same way the limiter keys
// expect it: forwarded-for first, then real-ip, then a sentinel. The
// headers are not validated, this is not a security boundary.
func clientIP(c echo.Context) string {
	if v := c.Request().Header.Get(echo.HeaderXForwardedFor); v != "" {
		if i := strings.IndexByte(v, ','); i >= 0 {
			v = v[:i]
		}
		return strings.TrimSpace(v)
	}
	if v := c.Request().Header.Get(echo.HeaderXRealIP); v != "" {
		return v
	}
	return "unknown"
}

func siteOrigin(c echo.Context) string {
	if v := commons.GetEnv("SITE_ORIGIN"); v != "" {
		return v
	}
	return c.Scheme() + "://" + c.Request().Host
}

func validationMessage(err error) string {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		switch fieldErrors[0].Field() {
		case "Email":
			return "Please enter a valid email address"
		case "Name":
			return "Name must be at least 2 characters"
		}
	}
	return "Invalid request"
}
