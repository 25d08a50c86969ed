package model

// CreateDepositRequest represents request for POST /deposits
type CreateDepositRequest struct {
	// ExpiresInSeconds sets a claim deadline relative to now. Zero means the
	// link never expires.
	ExpiresInSeconds int64 `json:"expiresInSeconds"`
	// SaveToVault appends the claim link to the server's encrypted vault
	// file when one is configured.
	SaveToVault bool `json:"saveToVault"`
}

// DepositResponse represents response for POST /deposits
type DepositResponse struct {
	Address   string `json:"address"`
	ClaimURL  string `json:"claimUrl"`
	Fragment  string `json:"fragment"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
	// QR is a base64-encoded PNG of the deposit address.
	QR string `json:"qr"`
}
