// Package plugin implements the host-callback side of spec §6's ABI:
// a Plugin struct whose methods mirror on_load/update_account/
// notify_end_of_startup/update_slot_status/notify_transaction/
// notify_block_metadata/account_data_notifications_enabled/
// transaction_notifications_enabled one-for-one. cmd/plugin exports
// these as C functions (-buildmode=c-shared) for a validator host to
// dlopen; this package only deals in Go types so it can be unit
// tested without cgo.
package plugin

import (
	"time"

	"github.com/solindex/geyser-indexer/event"
	"github.com/solindex/geyser-indexer/fanout"
	"github.com/solindex/geyser-indexer/global"
	"github.com/solindex/geyser-indexer/publisher"
)

// pushWaitBudget bounds how long Push blocks for priority kinds
// (slot-status, block-metadata) before the host callback returns;
// spec §4.2 requires these are never dropped, only back-pressured.
const pushWaitBudget = 50 * time.Millisecond

// Plugin holds the long-lived state on_load constructs and every
// later callback uses: the fan-out ring, the selector matchers, the
// overflow spill writer, and the publisher runtime draining the ring.
type Plugin struct {
	env global.NodeGlobal
	cfg Config
	sel selectors

	ring  *fanout.Ring
	pub   *publisher.Publisher
	spill *spillWriter

	panicOnError bool
}

// New constructs a Plugin against an already-running environment; the
// cgo shim in cmd/plugin owns process-wide global.New() lifecycle and
// calls this from its on_load export.
func New(env global.NodeGlobal, cfg Config, sink publisher.Sink, originPeerID string) *Plugin {
	ring := fanout.New(env, nil)
	limits := publisher.Limits{MaxRecords: cfg.BatchSize}
	pub := publisher.New(env, ring, sink, limits, originPeerID)

	p := &Plugin{
		env:          env,
		cfg:          cfg,
		sel:          newSelectors(cfg),
		ring:         ring,
		pub:          pub,
		spill:        newSpillWriter(cfg.SpillDir),
		panicOnError: cfg.PanicOnError,
	}
	pub.Start()
	return p
}

// Load implements on_load: it is the constructor's moral equivalent
// at the ABI boundary. Kept separate from New so cmd/plugin can read
// configPath, call LoadConfig, and only then build the Plugin.
func Load(env global.NodeGlobal, configPath string, sink publisher.Sink, originPeerID string) (*Plugin, Status) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		env.Log().Errorf("[plugin] on_load: %v", err)
		return nil, StatusFatal
	}
	return New(env, cfg, sink, originPeerID), StatusOK
}

// Unload drains every sub-ring's remaining records through the spill
// writer before the host tears the shared object down, per spec
// §4.2's unload grace period.
func (p *Plugin) Unload() Status {
	for _, kind := range event.AllKinds() {
		for _, rec := range p.ring.Drain(kind) {
			if err := p.spill.Write(rec); err != nil {
				p.env.Log().Warnf("[plugin] on_unload: spill drain failed for %s: %v", kind, err)
			}
		}
	}
	p.ring.Close()
	if err := p.spill.Close(); err != nil {
		p.env.Log().Warnf("[plugin] on_unload: close spill writer: %v", err)
	}
	return StatusOK
}

func (p *Plugin) fail(format string, args ...any) Status {
	p.env.Log().Errorf("[plugin] "+format, args...)
	if p.panicOnError {
		return StatusFatal
	}
	return StatusRecoverable
}

// UpdateAccount implements update_account. isStartup mirrors the
// host's own startup-replay flag straight onto AccountUpdate.IsStartup.
func (p *Plugin) UpdateAccount(a *event.AccountUpdate, isStartup bool) Status {
	a.IsStartup = isStartup
	if !p.sel.matchesAccount(a.Pubkey.String(), a.Owner.String()) {
		return StatusOK
	}
	return p.push(a)
}

// NotifyEndOfStartup implements notify_end_of_startup. There is no
// event payload for it; it only exists so the host tells the plugin
// the initial account snapshot replay is done.
func (p *Plugin) NotifyEndOfStartup() Status {
	p.env.Log().Infof("[plugin] end of startup replay")
	return StatusOK
}

// UpdateSlotStatus implements update_slot_status. Slot-status is a
// priority kind: Push blocks up to pushWaitBudget rather than
// dropping, per spec §4.2.
func (p *Plugin) UpdateSlotStatus(slot, parent uint64, status event.SlotStatusValue) Status {
	s := &event.SlotStatusUpdate{Slot: slot, Parent: parent, Status: status}
	return p.push(s)
}

// NotifyTransaction implements notify_transaction.
func (p *Plugin) NotifyTransaction(t *event.Transaction) Status {
	keys := make([]string, len(t.AccountKeys))
	for i, k := range t.AccountKeys {
		keys[i] = k.String()
	}
	if !p.sel.matchesTransaction(t.IsVote, keys) {
		return StatusOK
	}
	return p.push(t)
}

// NotifyBlockMetadata implements notify_block_metadata. Block info is
// a priority kind, same back-pressure treatment as slot-status.
func (p *Plugin) NotifyBlockMetadata(b *event.BlockInfo) Status {
	return p.push(b)
}

// AccountDataNotificationsEnabled implements
// account_data_notifications_enabled: the host skips update_account
// entirely when this is false, so it mirrors whether the selector can
// ever match anything.
func (p *Plugin) AccountDataNotificationsEnabled() bool {
	return p.sel.allAccounts || !p.sel.accounts.IsEmpty() || !p.sel.owners.IsEmpty()
}

// TransactionNotificationsEnabled implements
// transaction_notifications_enabled.
func (p *Plugin) TransactionNotificationsEnabled() bool {
	return p.sel.allTransactions || !p.sel.mentions.IsEmpty()
}

func (p *Plugin) push(v event.Value) Status {
	if err := event.Validate(v); err != nil {
		return p.fail("dropping malformed %T: %v", v, err)
	}
	rec, err := event.Encode(v)
	if err != nil {
		return p.fail("encode %T: %v", v, err)
	}

	priority := v.Kind().Priority()
	wait := time.Duration(0)
	if priority {
		wait = pushWaitBudget
	}

	evicted, ok := p.ring.Push(v.Kind(), rec, wait)
	if !ok {
		if priority {
			// Priority kinds are never dropped or spilled per spec
			// §4.2: the ring stayed full for the whole wait budget, so
			// the host gets a recoverable-error status instead.
			p.env.Log().Warnf("[plugin] priority ring full for %s after %s, returning recoverable error", v.Kind(), pushWaitBudget)
			return StatusRecoverable
		}
		return p.fail("ring closed, dropping %T", v)
	}

	if evicted != nil {
		// Non-priority overflow: the ring evicted the oldest queued
		// record to admit this one. Spill it per spec §4.2's "spill"
		// overflow mode instead of discarding it outright.
		if err := p.spill.Write(evicted); err != nil {
			p.env.Log().Warnf("[plugin] spill evicted %s record failed: %v", v.Kind(), err)
		}
	}
	return StatusOK
}
