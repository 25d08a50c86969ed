package model

// ErrorResponse is the consistent JSON structure for all API error responses.
// Code carries a stable machine-readable reason when one applies.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Stable error codes mirrored from the domain sentinels.
const (
	CodeMalformedFragment    = "malformed_fragment"
	CodeLinkExpired          = "link_expired"
	CodeInvalidDestinations  = "invalid_destinations"
	CodeNothingToClaim       = "nothing_to_claim"
	CodeNoFeePayer           = "no_fee_payer"
	CodeEndpointsUnavailable = "endpoints_unavailable"
	CodeUserRejected         = "user_rejected"
	CodeTransactionFailed    = "transaction_failed"
)
