// Package loghooks implements tiercache.Hooks on top of log/slog.
//
// Promotion, demotion and discard fire on hot paths, so they can be sampled;
// sweep summaries are always logged. Keys are redacted by default since cache
// keys often embed identifiers.
package loghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/tiercache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	PromoteEvery uint64
	DemoteEvery  uint64
	DiscardEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	promoteCtr atomic.Uint64
	demoteCtr  atomic.Uint64
	discardCtr atomic.Uint64
}

var _ tiercache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Promoted(key string) {
	if h.l == nil || !sample(h.opts.PromoteEvery, &h.promoteCtr) {
		return
	}
	h.l.Debug("tiercache.promoted",
		"key", h.redact(key))
}

func (h *Hooks) Demoted(key string) {
	if h.l == nil || !sample(h.opts.DemoteEvery, &h.demoteCtr) {
		return
	}
	h.l.Debug("tiercache.demoted",
		"key", h.redact(key))
}

func (h *Hooks) Discarded(key, reason string) {
	if h.l == nil || !sample(h.opts.DiscardEvery, &h.discardCtr) {
		return
	}
	// codec failures are anomalies, not routine churn
	if reason == tiercache.ReasonEncodeError || reason == tiercache.ReasonDecodeError {
		h.l.Warn("tiercache.discarded",
			"key", h.redact(key),
			"reason", reason)
		return
	}
	h.l.Debug("tiercache.discarded",
		"key", h.redact(key),
		"reason", reason)
}

func (h *Hooks) Swept(hot, warm int) {
	if h.l == nil {
		return
	}
	h.l.Info("tiercache.swept",
		"hot", hot,
		"warm", warm)
}
