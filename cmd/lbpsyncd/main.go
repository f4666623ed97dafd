package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/lbpsync/lbpengine"
	"github.com/lbpsync/lbpengine/configs"
	"github.com/lbpsync/lbpengine/internal/db"
	"github.com/lbpsync/lbpengine/internal/util"
	"github.com/lbpsync/lbpengine/pkg/contractclient"
	"github.com/lbpsync/lbpengine/pkg/hostamm"
	"github.com/lbpsync/lbpengine/pkg/hostamm/hostammrpc"
	"github.com/lbpsync/lbpengine/pkg/txlistener"
)

func main() {
	encryptedPk := os.Getenv("ENC_PK")
	if encryptedPk == "" {
		log.Fatal("ENC_PK not set")
	}
	key := os.Getenv("KEY")
	if key == "" {
		log.Fatal("KEY not set")
	}

	pkHex, err := util.Decrypt([]byte(key), encryptedPk)
	if err != nil {
		log.Fatalf("decrypt operator key: %v", err)
	}
	privateKey, err := crypto.HexToECDSA(pkHex)
	if err != nil {
		log.Fatalf("parse operator key: %v", err)
	}
	operator := crypto.PubkeyToAddress(privateKey.PublicKey)

	configPath := "configs/config.yml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}
	conf, err := configs.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	client, err := ethclient.Dial(conf.RPC)
	if err != nil {
		log.Fatalf("dial rpc: %v", err)
	}

	poolABI, err := util.LoadABI(conf.Pool.ABI)
	if err != nil {
		log.Fatalf("load pool abi: %v", err)
	}

	listener := txlistener.NewTxListener(
		client,
		txlistener.WithPollInterval(3*time.Second),
		txlistener.WithTimeout(5*time.Minute),
	)

	pool := contractclient.NewContractClient(client, common.HexToAddress(conf.Pool.Address), poolABI)
	host := hostammrpc.New(pool, poolABI, listener, operator, privateKey)

	var opts []lbpengine.ManagerOption
	if conf.Storage.DSN != "" {
		recorder, err := db.NewMySQLRecorder(conf.Storage.DSN)
		if err != nil {
			log.Fatalf("connect recorder db: %v", err)
		}
		defer recorder.Close()
		opts = append(opts, lbpengine.WithRecorder(recorder))
	}

	manager := lbpengine.NewManager(host, opts...)

	type hostedPool struct {
		id        hostamm.PoolID
		startTime uint32
	}
	hostedPools := make([]hostedPool, 0, len(conf.Pools))
	for _, ps := range conf.Pools {
		poolID, sched, err := ps.ToSchedule()
		if err != nil {
			log.Fatalf("pool %s: %v", ps.PoolID, err)
		}
		if err := manager.AfterInitialize(poolID, sched, uint32(time.Now().Unix())); err != nil {
			log.Fatalf("initialise pool %s: %v", ps.PoolID, err)
		}
		hostedPools = append(hostedPools, hostedPool{id: poolID, startTime: sched.StartTime})
		log.Printf("lbpengine: hosting pool %s (start=%d end=%d epoch=%ds)", ps.PoolID, sched.StartTime, sched.EndTime, sched.EpochSize)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ticker := time.NewTicker(conf.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("lbpengine: shutting down")
			return
		case <-ticker.C:
			now := uint32(time.Now().Unix())
			for _, hp := range hostedPools {
				if now < hp.startTime {
					continue
				}
				ev, err := manager.Sync(ctx, hp.id, now)
				if err != nil {
					log.Printf("lbpengine: sync pool %s: %v", hp.id, err)
					continue
				}
				if ev.Action != lbpengine.ActionNoOp {
					log.Printf("lbpengine: pool %s epoch %d action=%s committed=%s tick=%d", hp.id, ev.Epoch, ev.Action, ev.AmountCommitted, ev.CurrentMinTick)
				}
			}
		}
	}
}
