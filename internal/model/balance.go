package model

import "github.com/xvoidlabs/pridge/sweep"

// BalanceResponse represents response for GET /balances
type BalanceResponse struct {
	Address  string               `json:"address"`
	Lamports uint64               `json:"lamports"`
	SOL      string               `json:"sol"`
	Tokens   []sweep.TokenBalance `json:"tokens"`
	HasFunds bool                 `json:"hasFunds"`
}
