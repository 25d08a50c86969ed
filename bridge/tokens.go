package bridge

import "github.com/xvoidlabs/pridge/internal/client"

// Deployment is one token's contract on a specific EVM chain.
type Deployment struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
}

// Token maps a bridgeable asset to its EVM deployments and the Solana mint
// orders settle into.
type Token struct {
	Symbol      string               `json:"symbol"`
	SolanaMint  string               `json:"solanaMint"`
	Deployments map[int64]Deployment `json:"deployments"`
}

const (
	wrappedSolMint = "So11111111111111111111111111111111111111112"
	usdcMint       = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	usdtMint       = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
)

// SupportedTokens lists the assets the order form offers. NATIVE is the
// source chain's gas currency and uses deBridge's zero pseudo-address.
var SupportedTokens = map[string]Token{
	"NATIVE": {
		Symbol:     "NATIVE",
		SolanaMint: wrappedSolMint,
		Deployments: map[int64]Deployment{
			1:     {Address: client.NativeToken, Decimals: 18},
			42161: {Address: client.NativeToken, Decimals: 18},
			8453:  {Address: client.NativeToken, Decimals: 18},
			137:   {Address: client.NativeToken, Decimals: 18},
			56:    {Address: client.NativeToken, Decimals: 18},
			43114: {Address: client.NativeToken, Decimals: 18},
			10:    {Address: client.NativeToken, Decimals: 18},
		},
	},
	"USDC": {
		Symbol:     "USDC",
		SolanaMint: usdcMint,
		Deployments: map[int64]Deployment{
			1:     {Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Decimals: 6},
			42161: {Address: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831", Decimals: 6},
			8453:  {Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Decimals: 6},
			137:   {Address: "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359", Decimals: 6},
			56:    {Address: "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d", Decimals: 18},
			43114: {Address: "0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E", Decimals: 6},
			10:    {Address: "0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85", Decimals: 6},
		},
	},
	"USDT": {
		Symbol:     "USDT",
		SolanaMint: usdtMint,
		Deployments: map[int64]Deployment{
			1:     {Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Decimals: 6},
			42161: {Address: "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9", Decimals: 6},
			137:   {Address: "0xc2132D05D31c914a87C6611C10748AEb04B58e8F", Decimals: 6},
			56:    {Address: "0x55d398326f99059fF775485246999027B3197955", Decimals: 18},
			43114: {Address: "0x9702230A8Ea53601f5cD2dc00fDBc13d4dF4A8c7", Decimals: 6},
			10:    {Address: "0x94b008aA00579c1307B0EF2c499aD98a8ce58e58", Decimals: 6},
		},
	},
}

// TokenAddress resolves a symbol to its contract address on the chain.
// Returns empty when the token has no deployment there.
func TokenAddress(symbol string, chainID int64) string {
	token, ok := SupportedTokens[symbol]
	if !ok {
		return ""
	}
	return token.Deployments[chainID].Address
}
