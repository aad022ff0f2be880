// Package overlay generalizes the teacher's peering package (libp2p
// host, peer-key identity, pull protocol) into a topic-meshed gossip
// overlay: bounded per-topic mesh membership, a sliding dedup window,
// a peer ban list, and a backfill pull protocol keyed by
// (topic, slot-range) instead of bare transaction IDs.
package overlay

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	dht "github.com/libp2p/go-libp2p-kad-dht"
	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/discovery"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	drouting "github.com/libp2p/go-libp2p/p2p/discovery/routing"
	"github.com/libp2p/go-libp2p/p2p/transport/tcp"
	"github.com/solindex/geyser-indexer/core/work_process"
	"github.com/solindex/geyser-indexer/errkind"
	"github.com/solindex/geyser-indexer/event"
	"github.com/solindex/geyser-indexer/global"
)

const (
	protocolOverlayV1 = protocol.ID("/geyser-indexer/overlay/1.0.0")
	rendezvousString  = "geyser-indexer/overlay"
)

type Environment interface {
	global.NodeGlobal
}

// Config mirrors the network.* keys from the JSON config: bootstrap
// peers, listen addresses, and the mesh size knob.
type Config struct {
	ListenAddrs     []string
	BootstrapPeers  []peer.AddrInfo
	MeshSize        MeshSize
	DedupWindow     time.Duration
	BanTTL          time.Duration
	OffenseLimit    int
	LazyFanout      int
	AutopeerPeriod  time.Duration
	MaxPeers        int
}

func DefaultConfig() Config {
	return Config{
		ListenAddrs:    []string{"/ip4/0.0.0.0/tcp/0"},
		MeshSize:       DefaultMeshSize,
		DedupWindow:    DefaultDedupWindow,
		BanTTL:         DefaultBanTTL,
		OffenseLimit:   DefaultOffenseThreshold,
		LazyFanout:     20,
		AutopeerPeriod: 3 * time.Second,
		MaxPeers:       128,
	}
}

// Overlay is the process's gossip-mesh peer, implementing
// publisher.Sink and driving inbound gossip into a caller-supplied
// deliver callback.
type Overlay struct {
	env  Environment
	cfg  Config
	host host.Host
	dht  *dht.IpfsDHT
	disc discovery.Discovery

	mesh   *meshSet
	dedup  *dedupSet
	banned *banList

	mu      sync.RWMutex
	peers   map[peer.ID]struct{}

	onDeliver  func(env *event.Envelope)
	backfiller BackfillStore

	// delivery decouples ISM's commit path from the libp2p
	// stream-handling goroutine: handleGossip pushes, one long-lived
	// consumer calls onDeliver, so a slow HS write never stalls the
	// peer's read loop.
	delivery *work_process.WorkProcess[*event.Envelope]

	sequence uint64
}

// BackfillStore is implemented by the hot/cold store layer to answer
// a neighbor's pull request for sealed batches in a slot range.
type BackfillStore interface {
	ReadRange(ctx context.Context, kind event.Kind, fromSlot, toSlot uint64) ([]*event.Envelope, error)
}

func New(env Environment, priv crypto.PrivKey, cfg Config, backfiller BackfillStore, onDeliver func(env *event.Envelope)) (*Overlay, error) {
	opts := []libp2p.Option{
		libp2p.Identity(priv),
		libp2p.ListenAddrStrings(cfg.ListenAddrs...),
		libp2p.Transport(tcp.NewTCPTransport),
	}
	h, err := libp2p.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create libp2p host: %w", err)
	}

	kadDHT, err := dht.New(env.Ctx(), h)
	if err != nil {
		return nil, fmt.Errorf("unable to create kad-dht: %w", err)
	}

	ov := &Overlay{
		env:        env,
		cfg:        cfg,
		host:       h,
		dht:        kadDHT,
		disc:       drouting.NewRoutingDiscovery(kadDHT),
		mesh:       newMeshSet(cfg.MeshSize, cfg.LazyFanout),
		dedup:      newDedupSet(env.Ctx(), cfg.DedupWindow),
		banned:     newBanList(4096, cfg.BanTTL, cfg.OffenseLimit),
		peers:      make(map[peer.ID]struct{}),
		onDeliver:  onDeliver,
		backfiller: backfiller,
	}
	ov.delivery = work_process.New(env, "overlay_delivery", ov.deliverEnvelope)
	ov.delivery.Start()
	h.SetStreamHandler(protocolOverlayV1, ov.handleStream)
	return ov, nil
}

// deliverEnvelope is the delivery work process's consumer function.
func (ov *Overlay) deliverEnvelope(env *event.Envelope) {
	if ov.onDeliver != nil {
		ov.onDeliver(env)
	}
}

func (ov *Overlay) Start() {
	ov.env.MarkStartedComponent()
	go func() {
		defer ov.env.MarkStoppedComponent()
		if err := ov.dht.Bootstrap(ov.env.Ctx()); err != nil {
			ov.env.Log().Warnf("[overlay] dht bootstrap failed: %v", err)
		}
	}()

	for _, ai := range ov.cfg.BootstrapPeers {
		addr := ai
		go ov.connectPeer(addr)
	}

	ov.env.RepeatInBackground("overlay_autopeering", ov.cfg.AutopeerPeriod, func() bool {
		ov.discoverPeersIfNeeded()
		return true
	}, true)
}

func (ov *Overlay) connectPeer(ai peer.AddrInfo) {
	ctx, cancel := context.WithTimeout(ov.env.Ctx(), 10*time.Second)
	defer cancel()
	if err := ov.host.Connect(ctx, ai); err != nil {
		ov.env.Log().Warnf("[overlay] failed to connect to %s: %v", ShortPeerIDString(ai.ID), err)
		return
	}
	ov.mu.Lock()
	ov.peers[ai.ID] = struct{}{}
	ov.mu.Unlock()
	for _, k := range event.AllKinds() {
		ov.mesh.mesh(k).graft(ai.ID)
	}
}

func (ov *Overlay) discoverPeersIfNeeded() {
	ov.mu.RLock()
	n := len(ov.peers)
	ov.mu.RUnlock()
	if n >= ov.cfg.MaxPeers {
		return
	}

	ctx, cancel := context.WithTimeout(ov.env.Ctx(), 5*time.Second)
	defer cancel()
	peerChan, err := ov.disc.FindPeers(ctx, rendezvousString, discovery.Limit(20))
	if err != nil {
		ov.env.Log().Warnf("[overlay] peer discovery failed: %v", err)
		return
	}
	for ai := range peerChan {
		if ai.ID == ov.host.ID() {
			continue
		}
		ov.mu.RLock()
		_, known := ov.peers[ai.ID]
		ov.mu.RUnlock()
		if known || ov.banned.isBanned(ai.ID) {
			continue
		}
		go ov.connectPeer(ai)
	}
}

// SelfID returns this node's peer ID, used to stamp Envelope.OriginPeerID.
func (ov *Overlay) SelfID() peer.ID {
	return ov.host.ID()
}

func (ov *Overlay) allPeers() []peer.ID {
	ov.mu.RLock()
	defer ov.mu.RUnlock()
	out := make([]peer.ID, 0, len(ov.peers))
	for id := range ov.peers {
		out = append(out, id)
	}
	return out
}

// Publish implements publisher.Sink: it grafts the mesh up to
// D_mesh-low if needed, pushes the full envelope to mesh members and
// lazily announces to a larger fanout.
func (ov *Overlay) Publish(ctx context.Context, env *event.Envelope) error {
	mesh := ov.mesh.mesh(env.Kind)
	if mesh.needsMore() {
		candidates := ov.allPeers()
		rand.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
		for _, id := range candidates {
			if mesh.graft(id) && !mesh.needsMore() {
				break
			}
		}
	}

	frame := encodeGossipFrame(env)
	var lastErr error
	sent := 0
	for _, id := range mesh.memberList() {
		if err := ov.sendFrame(ctx, id, frame); err != nil {
			ov.env.Log().Warnf("[overlay] push to %s failed: %v", ShortPeerIDString(id), err)
			mesh.prune(id)
			lastErr = err
			continue
		}
		sent++
	}
	if sent == 0 && lastErr != nil {
		return fmt.Errorf("%w: %v", errkind.TransientIO, lastErr)
	}
	return nil
}

func (ov *Overlay) sendFrame(ctx context.Context, id peer.ID, frame []byte) error {
	stream, err := ov.host.NewStream(ctx, id, protocolOverlayV1)
	if err != nil {
		return err
	}
	defer stream.Close()
	return writeFrame(stream, frame)
}

func (ov *Overlay) handleStream(stream network.Stream) {
	defer stream.Close()
	remote := stream.Conn().RemotePeer()
	if ov.banned.isBanned(remote) {
		_ = stream.Reset()
		return
	}

	data, err := readFrame(stream)
	if err != nil {
		ov.env.Log().Warnf("[overlay] error reading frame from %s: %v", ShortPeerIDString(remote), err)
		_ = stream.Reset()
		return
	}
	if len(data) == 0 {
		return
	}

	switch data[0] {
	case frameKindGossip:
		ov.handleGossip(remote, data)
	case frameKindBackfillRequest:
		ov.handleBackfillRequest(stream, remote, data)
	default:
		ov.env.Log().Warnf("[overlay] unknown frame kind %d from %s", data[0], ShortPeerIDString(remote))
	}
}

func (ov *Overlay) handleGossip(remote peer.ID, data []byte) {
	env, err := decodeGossipFrame(data)
	if err != nil {
		ov.env.Log().Warnf("[overlay] malformed gossip from %s: %v", ShortPeerIDString(remote), err)
		if ov.banned.recordOffense(remote) {
			ov.env.Log().Warnf("[overlay] banning %s for repeated malformed gossip", ShortPeerIDString(remote))
		}
		return
	}
	if ov.dedup.seen(env.Kind, env.MessageID) {
		return
	}
	ov.delivery.Push(env)

	// re-gossip to the rest of the mesh for this topic, excluding the sender
	mesh := ov.mesh.mesh(env.Kind)
	frame := encodeGossipFrame(env)
	for _, id := range mesh.memberList() {
		if id == remote {
			continue
		}
		go func(target peer.ID) {
			ctx, cancel := context.WithTimeout(ov.env.Ctx(), 5*time.Second)
			defer cancel()
			_ = ov.sendFrame(ctx, target, frame)
		}(id)
	}
}

func (ov *Overlay) handleBackfillRequest(stream network.Stream, remote peer.ID, data []byte) {
	req, err := decodeBackfillRequest(data)
	if err != nil {
		ov.env.Log().Warnf("[overlay] malformed backfill request from %s: %v", ShortPeerIDString(remote), err)
		return
	}
	ctx, cancel := context.WithTimeout(ov.env.Ctx(), 30*time.Second)
	defer cancel()

	var reply *BackfillReply
	if ov.backfiller == nil {
		reply = &BackfillReply{NotFound: true}
	} else {
		envs, err := ov.backfiller.ReadRange(ctx, req.Kind, req.FromSlot, req.ToSlot)
		if err != nil || len(envs) == 0 {
			reply = &BackfillReply{NotFound: true}
		} else {
			reply = &BackfillReply{Envelopes: envs}
		}
	}
	if err := writeFrame(stream, encodeBackfillReply(reply)); err != nil {
		ov.env.Log().Warnf("[overlay] failed to write backfill reply to %s: %v", ShortPeerIDString(remote), err)
	}
}

// RequestBackfill pulls (kind, [fromSlot, toSlot]) from a random
// connected peer, per spec §4.5's targeted pull for backfill.
func (ov *Overlay) RequestBackfill(ctx context.Context, kind event.Kind, fromSlot, toSlot uint64) (*BackfillReply, error) {
	candidates := ov.allPeers()
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no peers available for backfill", errkind.TransientIO)
	}
	target := candidates[rand.Intn(len(candidates))]

	stream, err := ov.host.NewStream(ctx, target, protocolOverlayV1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	defer stream.Close()

	req := &BackfillRequest{Kind: kind, FromSlot: fromSlot, ToSlot: toSlot}
	if err := writeFrame(stream, encodeBackfillRequest(req)); err != nil {
		return nil, fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	respData, err := readFrame(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errkind.TransientIO, err)
	}
	return decodeBackfillReply(respData)
}

func (ov *Overlay) Close() error {
	if ov.dht != nil {
		_ = ov.dht.Close()
	}
	return ov.host.Close()
}
