package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config contains all configuration parameters for the application.
// Loaded once in main and passed down explicitly - no package-level state,
// so concurrent or repeated test runs stay isolated.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	// Solana side
	Network        string   `envconfig:"SOLANA_NETWORK" default:"mainnet"` // "mainnet" or "devnet"
	HeliusAPIKey   string   `envconfig:"HELIUS_API_KEY"`
	SolanaRPCURLs  []string `envconfig:"SOLANA_RPC_URLS"` // overrides the built-in endpoint set when non-empty
	PollIntervalMS int      `envconfig:"POLL_INTERVAL_MS" default:"5000"`

	// Claim links
	ClaimBaseURL string `envconfig:"CLAIM_BASE_URL" default:"https://pridge.io/"`

	// Optional server-side fee payer for gasless claims (base58 64-byte key)
	FeePayerKey string `envconfig:"FEE_PAYER_KEY"`

	// Optional encrypted vault of created deposits
	VaultFilePath string `envconfig:"VAULT_FILE_PATH"`
	VaultPassword string `envconfig:"VAULT_PASSWORD"`

	// Bridge side
	DeBridgeAPIURL string `envconfig:"DEBRIDGE_API_URL" default:"https://api.dln.trade/v1.0"`
	EVMRPCURL      string `envconfig:"EVM_RPC_URL"`
	EVMPrivateKey  string `envconfig:"EVM_PRIVATE_KEY"` // hex, no 0x prefix
	EVMChainID     int64  `envconfig:"EVM_CHAIN_ID" default:"1"`
}

// Public read endpoints that work without an API key. A Helius endpoint is
// prepended when HELIUS_API_KEY is set.
var (
	publicMainnetRPCs = []string{
		"https://rpc.ankr.com/solana",
		"https://solana-mainnet.g.alchemy.com/v2/demo",
		"https://api.mainnet-beta.solana.com",
	}
	publicDevnetRPCs = []string{
		"https://rpc.ankr.com/solana_devnet",
		"https://api.devnet.solana.com",
	}
)

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if cfg.Network != "mainnet" && cfg.Network != "devnet" {
		return nil, fmt.Errorf("invalid SOLANA_NETWORK %q: must be mainnet or devnet", cfg.Network)
	}
	return cfg, nil
}

// IsMainnet reports whether the configured network is mainnet.
func (c *Config) IsMainnet() bool {
	return c.Network == "mainnet"
}

// RPCEndpoints returns the ordered list of read endpoints for the configured
// network. Explicit SOLANA_RPC_URLS wins; otherwise the built-in public set,
// with the Helius endpoint first when an API key is present.
func (c *Config) RPCEndpoints() []string {
	if len(c.SolanaRPCURLs) > 0 {
		return c.SolanaRPCURLs
	}

	if c.IsMainnet() {
		if c.HeliusAPIKey != "" {
			return append([]string{"https://mainnet.helius-rpc.com/?api-key=" + c.HeliusAPIKey}, publicMainnetRPCs...)
		}
		return publicMainnetRPCs
	}

	if c.HeliusAPIKey != "" {
		return append([]string{"https://devnet.helius-rpc.com/?api-key=" + c.HeliusAPIKey}, publicDevnetRPCs...)
	}
	return publicDevnetRPCs
}

// ExtractHeliusKey accepts either a bare API key or a full Helius RPC URL and
// returns the key.
func ExtractHeliusKey(input string) string {
	if input == "" {
		return ""
	}
	if strings.Contains(input, "helius-rpc.com") {
		if i := strings.Index(input, "api-key="); i >= 0 {
			return input[i+len("api-key="):]
		}
		return ""
	}
	return input
}
