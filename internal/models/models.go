package models

import (
	"time"
)

// Submission is one client intake record. The id and timestamp are assigned
// server-side at creation time and never change afterwards.
type Submission struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	BusinessName  string    `json:"business_name"`
	MobileNumber  string    `json:"mobile_number"`
	Email         string    `json:"email,omitempty"`
	AgreedToTerms bool      `json:"agreed_to_terms"`
	Timestamp     time.Time `json:"timestamp"`
}

// SubmissionInput is the create payload sent by the public form.
// Clients never send an id or a timestamp.
type SubmissionInput struct {
	Name          string `json:"name"`
	BusinessName  string `json:"business_name"`
	MobileNumber  string `json:"mobile_number"`
	Email         string `json:"email,omitempty"`
	AgreedToTerms bool   `json:"agreed_to_terms"`
}

// AdminLogin is the body of POST /api/admin/verify.
type AdminLogin struct {
	Password string `json:"password"`
}

// VerifyResponse is returned by the admin verify endpoint on success.
type VerifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
