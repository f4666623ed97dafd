package util

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecrypt_RoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")[:32]
	plaintext := "super-secret-private-key"

	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	require.NoError(t, err)

	nonce := make([]byte, gcm.NonceSize())
	_, err = rand.Read(nonce)
	require.NoError(t, err)

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	ciphertextHex := hex.EncodeToString(sealed)

	got, err := Decrypt(key, ciphertextHex)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestDecrypt_BadCiphertext(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")[:32]
	_, err := Decrypt(key, "not-hex!!")
	assert.Error(t, err)
}

func TestHex2Bytes(t *testing.T) {
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, Hex2Bytes("0xdeadbeef"))
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, Hex2Bytes("deadbeef"))
	assert.Nil(t, Hex2Bytes("zz"))
}

const sampleABI = `[{"type":"function","name":"sync","inputs":[],"outputs":[]}]`

func TestLoadABI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.abi.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleABI), 0o644))

	parsed, err := LoadABI(path)
	require.NoError(t, err)
	_, ok := parsed.Methods["sync"]
	assert.True(t, ok)
}

func TestLoadABIFromHardhatArtifact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Pool.json")

	artifact := map[string]any{
		"contractName": "Pool",
		"abi":          json.RawMessage(sampleABI),
		"bytecode":     "0x",
	}
	raw, err := json.Marshal(artifact)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	parsed, err := LoadABIFromHardhatArtifact(path)
	require.NoError(t, err)
	_, ok := parsed.Methods["sync"]
	assert.True(t, ok)
}

func TestLoadABI_MissingFile(t *testing.T) {
	_, err := LoadABI("/nonexistent/path/abi.json")
	assert.Error(t, err)
}

func TestExtractGasCost(t *testing.T) {
	receipt := &types.Receipt{
		GasUsed:           21000,
		EffectiveGasPrice: big.NewInt(50_000_000_000),
	}
	cost, err := ExtractGasCost(receipt)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(21000*50_000_000_000), cost)
}

func TestExtractGasCost_NilReceipt(t *testing.T) {
	_, err := ExtractGasCost(nil)
	assert.Error(t, err)
}
