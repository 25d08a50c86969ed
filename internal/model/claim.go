package model

// SplitDestination is one leg of a split claim.
type SplitDestination struct {
	Address    string  `json:"address"`
	Percentage float64 `json:"percentage"`
}

// ClaimRequest represents request for POST /claim. Destination and
// Destinations are mutually exclusive; Destinations wins when both are set.
type ClaimRequest struct {
	Fragment     string             `json:"fragment"`
	Destination  string             `json:"destination,omitempty"`
	Destinations []SplitDestination `json:"destinations,omitempty"`
}

// ClaimResponse represents response for POST /claim
type ClaimResponse struct {
	Success     bool   `json:"success"`
	Signature   string `json:"signature"`
	ExplorerURL string `json:"explorerUrl"`
}
