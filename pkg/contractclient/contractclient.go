// Package contractclient wraps a go-ethereum client and an ABI for a single
// contract address, the way blackhole.go's ContractClient interface (Call /
// Send / ContractAddress) does for the host DEX's router, pool and token
// contracts. Here it backs the live hostamm.Host implementation
// (pkg/hostamm/hostammrpc): one ContractClient per on-chain contract the
// engine's runner talks to (the CL-AMM pool), plus transaction decoding
// used by offline tooling.
package contractclient

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ContractClient binds one deployed contract (address + ABI) to an RPC
// client, exposing read (Call) and write (Send) access by method name
// rather than per-method generated bindings.
type ContractClient struct {
	client  *ethclient.Client
	address common.Address
	abi     abi.ABI
	chainID *big.Int
}

// NewContractClient builds a client for the contract at address, described
// by abi. chainID is resolved lazily on the first Send call if nil.
func NewContractClient(client *ethclient.Client, address common.Address, contractABI abi.ABI) *ContractClient {
	return &ContractClient{client: client, address: address, abi: contractABI}
}

// ContractAddress returns the bound contract's address.
func (c *ContractClient) ContractAddress() common.Address {
	return c.address
}

// Call performs an eth_call against method with args, ABI-decoding the
// return values. from may be nil for a call with no msg.sender dependency.
func (c *ContractClient) Call(ctx context.Context, from *common.Address, method string, args ...interface{}) ([]interface{}, error) {
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("contractclient: pack %s: %w", method, err)
	}

	msg := ethereum.CallMsg{To: &c.address, Data: input}
	if from != nil {
		msg.From = *from
	}

	out, err := c.client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("contractclient: call %s: %w", method, err)
	}

	result, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("contractclient: unpack %s: %w", method, err)
	}
	return result, nil
}

// Send signs and submits a transaction invoking method with args, from the
// account held by privateKey. gasLimit of nil selects automatic estimation.
// It returns the submitted transaction hash; callers wait for the receipt
// via pkg/txlistener.
func (c *ContractClient) Send(ctx context.Context, from common.Address, privateKey *ecdsa.PrivateKey, gasLimit *big.Int, method string, args ...interface{}) (common.Hash, error) {
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("contractclient: pack %s: %w", method, err)
	}

	nonce, err := c.client.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("contractclient: nonce: %w", err)
	}

	gasTipCap, err := c.client.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("contractclient: suggest tip: %w", err)
	}
	head, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("contractclient: head: %w", err)
	}
	gasFeeCap := new(big.Int).Add(gasTipCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	limit := gasLimit
	if limit == nil {
		est, err := c.client.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &c.address, Data: input})
		if err != nil {
			return common.Hash{}, fmt.Errorf("contractclient: estimate gas %s: %w", method, err)
		}
		limit = new(big.Int).SetUint64(est)
	}

	if c.chainID == nil {
		chainID, err := c.client.ChainID(ctx)
		if err != nil {
			return common.Hash{}, fmt.Errorf("contractclient: chain id: %w", err)
		}
		c.chainID = chainID
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: gasTipCap,
		GasFeeCap: gasFeeCap,
		Gas:       limit.Uint64(),
		To:        &c.address,
		Data:      input,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), privateKey)
	if err != nil {
		return common.Hash{}, fmt.Errorf("contractclient: sign %s: %w", method, err)
	}

	if err := c.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("contractclient: send %s: %w", method, err)
	}
	return signed.Hash(), nil
}

// TransactionData fetches the raw calldata of a mined transaction.
func (c *ContractClient) TransactionData(ctx context.Context, hash common.Hash) ([]byte, error) {
	tx, _, err := c.client.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("contractclient: fetch tx %s: %w", hash, err)
	}
	return tx.Data(), nil
}

// DecodedTransaction is the method-name-plus-argument view DecodeTransaction
// produces from raw calldata, suitable for logging or JSON export.
type DecodedTransaction struct {
	MethodName string                 `json:"method_name"`
	Args       map[string]interface{} `json:"args"`
}

// DecodeTransaction ABI-decodes calldata against the bound contract's ABI.
func (c *ContractClient) DecodeTransaction(data []byte) (*DecodedTransaction, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("contractclient: calldata shorter than a method selector")
	}

	method, err := c.abi.MethodById(data[:4])
	if err != nil {
		return nil, fmt.Errorf("contractclient: unknown method selector: %w", err)
	}

	args := make(map[string]interface{})
	if err := method.Inputs.UnpackIntoMap(args, data[4:]); err != nil {
		return nil, fmt.Errorf("contractclient: unpack args for %s: %w", method.Name, err)
	}

	return &DecodedTransaction{MethodName: method.Name, Args: args}, nil
}

// DecodeTransactionHex is DecodeTransaction for a "0x"-prefixed hex string.
func (c *ContractClient) DecodeTransactionHex(hexData string) (*DecodedTransaction, error) {
	s := hexData
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("contractclient: decode hex calldata: %w", err)
	}
	return c.DecodeTransaction(data)
}
