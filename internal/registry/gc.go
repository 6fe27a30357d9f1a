package registry

import (
	"log"
	"time"
)

// Start launches the idle sweeper when a default max age is configured.
// The sweep interval equals the default max age; a zero default disables
// garbage collection entirely.
func (g *Registry) Start() {
	if g.cfg.DefaultMaxAge <= 0 {
		return
	}
	g.sweeping = true
	go g.sweepLoop()
}

// Close stops the sweeper and waits for it to exit. Safe to call more
// than once, and when Start never ran a sweeper.
func (g *Registry) Close() {
	g.closeOnce.Do(func() {
		close(g.stop)
	})
	if g.sweeping {
		<-g.done
	}
}

func (g *Registry) sweepLoop() {
	defer close(g.done)
	ticker := time.NewTicker(g.cfg.DefaultMaxAge)
	defer ticker.Stop()
	for {
		select {
		case <-g.stop:
			return
		case <-ticker.C:
			g.sweepSafe()
		}
	}
}

// sweepSafe runs one sweep, swallowing and logging any failure so the
// loop always reschedules.
func (g *Registry) sweepSafe() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("registry: idle sweep failed: %v", r)
		}
	}()
	g.Sweep()
}

// Sweep evicts every entry whose time since last access exceeds its
// effective threshold: the entry's own maxAge override when present,
// else the registry-wide default.
func (g *Registry) Sweep() {
	defaultAge := int64(g.cfg.DefaultMaxAge / time.Second)
	nowTs := now().Unix()

	for _, key := range g.store.Keys() {
		e, ok := g.store.Get(key)
		if !ok {
			// removed since the key snapshot; nothing to do
			continue
		}
		threshold := defaultAge
		if m, ok := fieldInt(e.Env, FieldMaxAge); ok && m > 0 {
			threshold = int64(m)
		}
		if threshold <= 0 {
			// no effective threshold; the entry lives until its count
			// runs out or it is dropped explicitly
			continue
		}
		accessed := nowTs
		if at, ok := fieldInt(e.Env, FieldAccessTime); ok {
			accessed = int64(at)
		}
		if age := nowTs - accessed; age > threshold {
			g.store.Unset(key)
			g.emit(Event{Type: EventExpired, Key: key, At: now()})
		}
	}
}
