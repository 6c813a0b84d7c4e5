// SPDX-License-Identifier: GPL-3.0-only

package handlers

// swagger:model JoinWaitlistRequest
type JoinWaitlistRequest struct {
	// Email address to register
	// required: true
	Email string `json:"email" validate:"required,email" example:"user@example.com"`
	// Optional display name, min 2 characters when present
	Name string `json:"name" validate:"omitempty,min=2" example:"John Doe"`
	// Honeypot field, rendered off-screen in the form. Real users never
	// fill it.
	Website string `json:"website"`
	// Referral code of the entry that sent this signup
	ReferredBy string `json:"referredBy" example:"V1STGXR8"`
}

// swagger:model JoinWaitlistResponse
type JoinWaitlistResponse struct {
	// Whether the signup was accepted
	Success bool `json:"success"`
	// Welcome message
	Message string `json:"message,omitempty" example:"Welcome to Megatron! 🚀"`
	// Server-generated 8-character referral code
	ReferralCode string `json:"referralCode" example:"V1STGXR8"`
	// Shareable referral link
	ReferralUrl string `json:"referralUrl" example:"https://megatron.example?ref=V1STGXR8"`
}

// swagger:model ErrorResponse
type ErrorResponse struct {
	// Human-readable error message
	Error string `json:"error" example:"Please enter a valid email address"`
}

// swagger:model ReferralStatsResponse
type ReferralStatsResponse struct {
	// The referral code the stats are for
	ReferralCode string `json:"referralCode" example:"V1STGXR8"`
	// Number of signups attributed to the code
	SignupCount int64 `json:"signupCount" example:"12"`
}

// swagger:model SessionResponse
type SessionResponse struct {
	// Email of the signed-in user
	Email string `json:"email" example:"user@example.com"`
	// Display name from the identity provider
	Name string `json:"name,omitempty" example:"John Doe"`
}
