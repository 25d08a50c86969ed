// Package crypto encrypts and decrypts .pvault deposit vault files with
// scrypt-derived AES-256-GCM.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xvoidlabs/pridge/internal/model"

	"golang.org/x/crypto/scrypt"
)

const (
	// scrypt parameters for the deposit vault
	//
	// N=2^15 (~32MB RAM): the vault is re-encrypted on every deposit append,
	// so key derivation has to stay well under a second on the API path.
	// Wrong-password attempts still cost the same derivation.
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 32
	nonceLen     = 12
)

// EncryptVault encrypts vault data and writes it to a .pvault file,
// replacing any previous contents. password must be []byte for security
// (caller should zero it after use).
func EncryptVault(filePath, network string, data *model.VaultData, password []byte) error {
	if !strings.HasSuffix(filePath, ".pvault") {
		return errors.New("file must have .pvault extension")
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	key, err := scrypt.Key(password, salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return fmt.Errorf("failed to derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal vault data: %w", err)
	}
	defer clear(plaintext) // wipe plaintext bytes from memory

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	vaultFile := model.VaultFile{
		Network:    network,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
	}

	fileData, err := json.MarshalIndent(vaultFile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal vault file: %w", err)
	}

	if err := os.WriteFile(filePath, fileData, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// DecryptVault reads and decrypts a .pvault file.
// password must be []byte for security (caller should zero it after use).
func DecryptVault(filePath string, password []byte) (*model.VaultFile, *model.VaultData, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.New("file does not exist")
		}
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}

	if fileInfo.Size() == 0 {
		return nil, nil, errors.New("file is empty")
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}

	// Skip UTF-8 BOM if present
	if len(fileData) >= 3 && fileData[0] == 0xEF && fileData[1] == 0xBB && fileData[2] == 0xBF {
		fileData = fileData[3:]
	}

	var vaultFile model.VaultFile
	if err := json.Unmarshal(fileData, &vaultFile); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal vault file: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(vaultFile.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	nonce, err := base64.StdEncoding.DecodeString(vaultFile.Nonce)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode nonce: %w", err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(vaultFile.CipherText)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	key, err := scrypt.Key(password, salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, nil, errors.New("invalid password")
	}
	defer clear(plaintext) // wipe decrypted bytes from memory

	var vaultData model.VaultData
	if err := json.Unmarshal(plaintext, &vaultData); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal vault data: %w", err)
	}

	return &vaultFile, &vaultData, nil
}

// AppendDeposit adds a record to the vault, creating the file when it does
// not exist yet. The whole vault is re-encrypted under a fresh salt and
// nonce.
func AppendDeposit(filePath, network string, record model.DepositRecord, password []byte) error {
	data := &model.VaultData{}

	if _, err := os.Stat(filePath); err == nil {
		_, existing, err := DecryptVault(filePath, password)
		if err != nil {
			return fmt.Errorf("failed to open existing vault: %w", err)
		}
		data = existing
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat vault: %w", err)
	}

	data.Deposits = append(data.Deposits, record)
	return EncryptVault(filePath, network, data, password)
}

// ReadVaultNetwork reads only the network label from a .pvault file (without
// decryption).
func ReadVaultNetwork(filePath string) (string, error) {
	fileData, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New("file does not exist")
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	if len(fileData) >= 3 && fileData[0] == 0xEF && fileData[1] == 0xBB && fileData[2] == 0xBF {
		fileData = fileData[3:]
	}

	var vaultFile model.VaultFile
	if err := json.Unmarshal(fileData, &vaultFile); err != nil {
		return "", fmt.Errorf("failed to unmarshal vault file: %w", err)
	}

	return vaultFile.Network, nil
}
