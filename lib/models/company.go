package models

import (
	"database/sql"
	"time"
)

// Company represents a tenant, based on the core.companies table
type Company struct {
	ID                 int64          `json:"id"`
	Name               string         `json:"name"`
	Slug               string         `json:"slug"`
	Country            string         `json:"country"`
	Sector             string         `json:"sector"`
	OrganizationType   string         `json:"organization_type"`
	RepresentativeName string         `json:"representative_name"`
	OwnerAuthUserID    string         `json:"owner_auth_user_id"`
	OwnerEmail         string         `json:"owner_email"`
	VerifiedAt         *time.Time     `json:"verified_at,omitempty"` // null until the owner's email is confirmed
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	Website            sql.NullString `json:"website,omitempty"`
}

// PendingRegistration tracks an email/password signup awaiting verification,
// based on the core.pending_registrations table. Rows past ExpiresAt with
// Verified still false are reaped by the cleanup job together with their
// company and auth user.
type PendingRegistration struct {
	ID         int64     `json:"id"`
	AuthUserID string    `json:"auth_user_id"`
	CompanyID  int64     `json:"company_id"`
	Email      string    `json:"email"`
	Verified   bool      `json:"verified"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// StartRegistrationRequest represents the request payload for POST /registration/start
type StartRegistrationRequest struct {
	AuthUserID         string `json:"auth_user_id" binding:"required"`
	Email              string `json:"email" binding:"required,email"`
	RepresentativeName string `json:"representative_name" binding:"required"`
	CompanyName        string `json:"company_name" binding:"required"`
	Country            string `json:"country" binding:"required"`
	Sector             string `json:"sector" binding:"required"`
	OrganizationType   string `json:"organization_type" binding:"required"`
	MarketingOptIn     bool   `json:"marketing_opt_in,omitempty"`
}

// StartRegistrationResponse represents the response after starting a registration
type StartRegistrationResponse struct {
	OK        bool  `json:"ok"`
	CompanyID int64 `json:"company_id"`
}

// CleanupReport summarizes one run of the registration cleanup job
type CleanupReport struct {
	OK               bool     `json:"ok"`
	Scanned          int      `json:"scanned"`
	DeletedCompanies int      `json:"deletedCompanies"`
	DeletedUsers     int      `json:"deletedUsers"`
	DeletedPending   int      `json:"deletedPending"`
	Errors           []string `json:"errors"`
}
