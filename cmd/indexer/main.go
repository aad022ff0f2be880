// Command indexer is the node-lifecycle entrypoint: it parses the
// node-level JSON config, opens the hot and cold stores, brings up the
// overlay host, wires the ingestion state machine to both, starts the
// migrator, and blocks until a termination signal arrives, mirroring
// the teacher's main.go kill-channel/Stop/WaitStop shape.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
	"go.uber.org/zap/zapcore"

	"github.com/solindex/geyser-indexer/coldstore"
	"github.com/solindex/geyser-indexer/config"
	"github.com/solindex/geyser-indexer/event"
	"github.com/solindex/geyser-indexer/general"
	"github.com/solindex/geyser-indexer/global"
	"github.com/solindex/geyser-indexer/hotstore"
	"github.com/solindex/geyser-indexer/ingest"
	"github.com/solindex/geyser-indexer/ingest/chainrpc"
	"github.com/solindex/geyser-indexer/memlog"
	"github.com/solindex/geyser-indexer/migrator"
	"github.com/solindex/geyser-indexer/overlay"
)

const defaultChainRPCTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to the node JSON config file")
	chainRPCURL := flag.String("chain-rpc", "", "base URL of the canonical chain RPC fallback (empty disables it)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	bootLog := general.NewLogger("[boot]", zapLevel(cfg.LoggerLevel), []string{"stderr"}, "")
	env := global.NewFromConfig(general.NewLogger("[node]", zapLevel(cfg.LoggerLevel), cfg.LoggerOutput, ""))
	memlog.StartMemoryLogging(env.Ctx())

	hsCfg := hotstore.DefaultConfig(filepath.Join(cfg.DataDir, "hot"))
	hs, err := hotstore.Open(env, hsCfg)
	if err != nil {
		bootLog.Fatalf("cannot open hot store: %v", err)
	}

	coldRoot := filepath.Join(cfg.DataDir, "cold")
	idx := coldstore.NewIndex(coldRoot)
	if err := idx.Rebuild(); err != nil {
		bootLog.Fatalf("cannot rebuild cold store index: %v", err)
	}

	priv, err := loadIdentity(cfg.HostPrivateKeyHex)
	if err != nil {
		bootLog.Fatalf("cannot load host identity: %v", err)
	}

	var mach *ingest.Machine

	ovCfg := overlay.DefaultConfig()
	ovCfg.ListenAddrs = cfg.NetworkListenAddrs
	ovCfg.BootstrapPeers = parseBootstrapPeers(bootLog, cfg.NetworkBootstrapPeers)

	ov, err := overlay.New(env, priv, ovCfg, hs, func(e *event.Envelope) {
		mach.DeliverEnvelope(env.Ctx(), e)
	})
	if err != nil {
		bootLog.Fatalf("cannot start overlay: %v", err)
	}

	var rpc ingest.ChainRPC
	if *chainRPCURL != "" {
		rpc = chainrpc.New(*chainRPCURL, defaultChainRPCTimeout)
	}
	mach = ingest.New(env, hs, overlayBackfillRequester{ov: ov}, rpc)

	mgCfg := migrator.DefaultConfig(coldRoot)
	mgCfg.MigrationDepth = cfg.MigrationDepthSlots
	mgCfg.HotWindowSlots = cfg.HotWindowSlots
	mgCfg.RangeSize = cfg.MigrationRangeSize
	mgCfg.Period = cfg.MigrationPeriod
	mg := migrator.New(env, hs, idx, mgCfg)

	ov.Start()
	mg.Start()

	env.Log().Infof("%s", global.BannerString())
	env.Log().Infof("listening on %v, peer id %s", cfg.NetworkListenAddrs, ov.SelfID())

	killChan := make(chan os.Signal, 1)
	signal.Notify(killChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-killChan
		env.Stop()
	}()

	<-env.Ctx().Done()
	env.Wait()

	if err := ov.Close(); err != nil {
		env.Log().Warnf("overlay close: %v", err)
	}
	if err := hs.Close(); err != nil {
		env.Log().Warnf("hot store close: %v", err)
	}
}

func zapLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func loadIdentity(hexSeed string) (crypto.PrivKey, error) {
	if hexSeed == "" {
		return overlay.GenerateIdentity()
	}
	seed, err := hex.DecodeString(hexSeed)
	if err != nil {
		return nil, fmt.Errorf("host.private_key: %w", err)
	}
	return crypto.UnmarshalEd25519PrivateKey(seed)
}

func parseBootstrapPeers(log interface{ Warnf(string, ...any) }, addrs []string) []peer.AddrInfo {
	var out []peer.AddrInfo
	for _, a := range addrs {
		maddr, err := ma.NewMultiaddr(a)
		if err != nil {
			log.Warnf("skipping bootstrap peer %q: %v", a, err)
			continue
		}
		ai, err := peer.AddrInfoFromP2pAddr(maddr)
		if err != nil {
			log.Warnf("skipping bootstrap peer %q: %v", a, err)
			continue
		}
		out = append(out, *ai)
	}
	return out
}
