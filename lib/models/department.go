package models

import "time"

// Department represents a company department, based on the core.departments table
type Department struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// LookupItem is one value/label pair returned by the lookup endpoints
type LookupItem struct {
	Value interface{} `json:"value"`
	Label string      `json:"label"`
}

// LookupResponse represents the response for GET /lookups/{entity}
type LookupResponse struct {
	Items []LookupItem `json:"items"`
}
