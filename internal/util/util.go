// Package util collects the small ambient helpers the rest of the engine
// leans on: AES-encrypted key material, ABI loading (both raw ABI JSON and
// Hardhat artifact JSON), hex decoding, and gas-cost extraction from
// transaction receipts.
package util

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"
)

// Decrypt AES-GCM decrypts an encrypted private key using key as the raw
// AES key and ciphertextHex as a hex-encoded "nonce||ciphertext" blob.
func Decrypt(key []byte, ciphertextHex string) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("util: new cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("util: new gcm: %w", err)
	}

	raw, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return "", fmt.Errorf("util: decode hex: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(raw) < nonceSize {
		return "", fmt.Errorf("util: ciphertext shorter than nonce")
	}

	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("util: gcm open: %w", err)
	}
	return string(plaintext), nil
}

// LoadABI reads a raw ABI JSON file (just the `[...]` array, as returned by
// solc --abi) and parses it.
func LoadABI(path string) (abi.ABI, error) {
	f, err := os.Open(path)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("util: open abi file: %w", err)
	}
	defer f.Close()

	parsed, err := abi.JSON(f)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("util: parse abi: %w", err)
	}
	return parsed, nil
}

// hardhatArtifact is the subset of a Hardhat compilation artifact this
// engine cares about.
type hardhatArtifact struct {
	ABI json.RawMessage `json:"abi"`
}

// LoadABIFromHardhatArtifact reads a Hardhat artifact JSON file (the full
// `{"abi": [...], "bytecode": "...", ...}` blob) and extracts the ABI.
func LoadABIFromHardhatArtifact(path string) (abi.ABI, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("util: read artifact: %w", err)
	}

	var artifact hardhatArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return abi.ABI{}, fmt.Errorf("util: unmarshal artifact: %w", err)
	}

	parsed, err := abi.JSON(bytes.NewReader(artifact.ABI))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("util: parse artifact abi: %w", err)
	}
	return parsed, nil
}

// Hex2Bytes decodes a hex string, tolerating an optional "0x" prefix.
func Hex2Bytes(s string) []byte {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

// ExtractGasCost computes the ETH-denominated gas cost (gasUsed *
// effectiveGasPrice) of a mined transaction receipt.
func ExtractGasCost(receipt *types.Receipt) (*big.Int, error) {
	if receipt == nil {
		return nil, fmt.Errorf("util: nil receipt")
	}
	if receipt.EffectiveGasPrice == nil {
		return nil, fmt.Errorf("util: receipt missing effective gas price")
	}
	gasUsed := new(big.Int).SetUint64(receipt.GasUsed)
	return new(big.Int).Mul(gasUsed, receipt.EffectiveGasPrice), nil
}
