// Package txlistener waits for transactions submitted via
// pkg/contractclient to be mined, polling the RPC endpoint the way
// blackhole.go's TxListener collaborator does ahead of every Send-then-wait
// pair (approve, then swap; close a position, then open the new one).
package txlistener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrTimeout is returned when a transaction isn't mined within the
// configured timeout.
var ErrTimeout = errors.New("txlistener: timed out waiting for transaction")

// TxListener polls a client for a transaction's receipt, used by callers
// that submit a transaction via contractclient.ContractClient.Send and must
// block until it lands before issuing the next one in sequence.
type TxListener struct {
	client       *ethclient.Client
	pollInterval time.Duration
	timeout      time.Duration
}

// Option configures a TxListener.
type Option func(*TxListener)

// WithPollInterval sets how often the listener polls for a receipt.
// Default: 3 seconds.
func WithPollInterval(d time.Duration) Option {
	return func(l *TxListener) { l.pollInterval = d }
}

// WithTimeout sets how long the listener waits before giving up.
// Default: 5 minutes.
func WithTimeout(d time.Duration) Option {
	return func(l *TxListener) { l.timeout = d }
}

// NewTxListener builds a listener bound to client, with the supplied
// options layered over the defaults.
func NewTxListener(client *ethclient.Client, opts ...Option) *TxListener {
	l := &TxListener{
		client:       client,
		pollInterval: 3 * time.Second,
		timeout:      5 * time.Minute,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WaitForTransaction polls until hash is mined (or reverted), returning its
// receipt. A non-nil receipt with Status == types.ReceiptStatusFailed means
// the transaction reverted; the caller, not this listener, decides what
// that means for the engine's in-flight sync.
func (l *TxListener) WaitForTransaction(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := l.client.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, hash)
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("txlistener: fetch receipt for %s: %w", hash, err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrTimeout, hash)
		case <-ticker.C:
		}
	}
}
