package model

// VaultFile represents .pvault file structure
type VaultFile struct {
	Network    string `json:"network"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
}

// DepositRecord is one saved claim link.
type DepositRecord struct {
	Fragment  string `json:"fragment"`
	Address   string `json:"address"`
	CreatedAt string `json:"createdAt"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
}

// VaultData represents decrypted vault contents
type VaultData struct {
	Deposits []DepositRecord `json:"deposits"`
}
