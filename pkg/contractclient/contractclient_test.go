package contractclient

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"

	"github.com/lbpsync/lbpengine/internal/util"
)

// TestDecodeTransaction is an opt-in integration test against a live RPC
// endpoint: it loads config from env/.env.test.local and skips entirely
// when that file or the variables it must set are absent, rather than
// failing a suite that has no RPC.
func TestDecodeTransaction(t *testing.T) {
	if err := godotenv.Load("env/.env.test.local"); err != nil {
		t.Skipf("skipping: no env/.env.test.local: %v", err)
	}

	contractAddr := os.Getenv("CONTRACT_ADDR")
	rpcURL := os.Getenv("RPC_URL")
	txHash := os.Getenv("TX_HASH")
	txData := os.Getenv("TX_DATA")
	path := os.Getenv("ABI_PATH")

	if contractAddr == "" || rpcURL == "" || path == "" || (txHash == "" && txData == "") {
		t.Skip("skipping: CONTRACT_ADDR/RPC_URL/ABI_PATH/(TX_HASH|TX_DATA) not fully set")
	}

	t.Logf("loaded test config - contract: %s, rpc: %s, tx_hash: %s, tx_data: %s", contractAddr, rpcURL, txHash, txData)

	contractABI, err := util.LoadABIFromHardhatArtifact(path)
	if err != nil {
		t.Fatal(err)
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		t.Fatal(err)
	}
	cc := NewContractClient(client, common.HexToAddress(contractAddr), contractABI)
	ctx := context.Background()

	t.Run("decode_tx", func(t *testing.T) {
		var data []byte
		if txData != "" {
			data = util.Hex2Bytes(txData)
		} else {
			data, err = cc.TransactionData(ctx, common.HexToHash(txHash))
			if err != nil {
				t.Fatal(err)
			}
		}

		decoded, err := cc.DecodeTransaction(data)
		if err != nil {
			t.Fatal(err)
		}

		jsonData, err := json.MarshalIndent(decoded, "", "  ")
		if err != nil {
			t.Fatalf("marshal decoded transaction: %v", err)
		}
		t.Logf("decoded transaction:\n%s", string(jsonData))
	})

	t.Run("decode_hex_string", func(t *testing.T) {
		// transfer(address,uint256)
		hexData := "0xa9059cbb0000000000000000000000006e4141d33021b52c91c28608403db4a0ffb50ec600000000000000000000000000000000000000000000000000000000000f4240"

		decoded, err := cc.DecodeTransactionHex(hexData)
		if err != nil {
			t.Fatal(err)
		}
		if decoded.MethodName != "transfer" {
			t.Errorf("expected method name 'transfer', got %q", decoded.MethodName)
		}
	})
}

// TestCallTransaction is a read-only Call smoke test against the host
// CL-AMM's slot0/tickSpacing reads. Also opt-in via env.
func TestCallTransaction(t *testing.T) {
	if err := godotenv.Load("env/.env.globalstate.local"); err != nil {
		t.Skipf("skipping: no env/.env.globalstate.local: %v", err)
	}

	contractAddr := os.Getenv("CONTRACT_ADDR")
	rpcURL := os.Getenv("RPC_URL")
	path := os.Getenv("ABI_PATH")
	if contractAddr == "" || rpcURL == "" || path == "" {
		t.Skip("skipping: CONTRACT_ADDR/RPC_URL/ABI_PATH not fully set")
	}

	contractABI, err := util.LoadABIFromHardhatArtifact(path)
	if err != nil {
		t.Fatal(err)
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		t.Fatal(err)
	}
	cc := NewContractClient(client, common.HexToAddress(contractAddr), contractABI)
	ctx := context.Background()

	t.Run("slot0", func(t *testing.T) {
		outputs, err := cc.Call(ctx, nil, "slot0")
		if err != nil {
			t.Fatal(err)
		}
		t.Logf("slot0 outputs: %v", outputs)
	})

	t.Run("tickSpacing", func(t *testing.T) {
		outputs, err := cc.Call(ctx, nil, "tickSpacing")
		if err != nil {
			t.Fatal(err)
		}
		t.Logf("tickSpacing outputs: %v", outputs)
	})
}
