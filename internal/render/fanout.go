// Package render combines renderers and notifiers so one loop can feed
// several outputs.
package render

import (
	"context"
	"errors"

	"github.com/zeusync/trackrun/internal/core/loop"
	"github.com/zeusync/trackrun/internal/core/scene"
)

type fanout []loop.Renderer

// Fanout renders each snapshot to every non-nil renderer in order. Errors
// are joined; a failing renderer does not stop the ones after it.
func Fanout(renderers ...loop.Renderer) loop.Renderer {
	out := make(fanout, 0, len(renderers))
	for _, r := range renderers {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (f fanout) Render(ctx context.Context, snap scene.Snapshot) error {
	var all error
	for _, r := range f {
		if err := r.Render(ctx, snap); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}

type notifiers []loop.Notifier

// Notifiers calls every non-nil notifier in order.
func Notifiers(ns ...loop.Notifier) loop.Notifier {
	out := make(notifiers, 0, len(ns))
	for _, n := range ns {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (n notifiers) Notify(ctx context.Context, ev loop.CollisionEvent) {
	for _, x := range n {
		x.Notify(ctx, ev)
	}
}

// Dedupe skips snapshots whose fingerprint matches the previous one.
type Dedupe struct {
	Next loop.Renderer

	last    uint64
	hasLast bool
	skipped uint64
}

func (d *Dedupe) Render(ctx context.Context, snap scene.Snapshot) error {
	fp := snap.Fingerprint()
	if d.hasLast && fp == d.last {
		d.skipped++
		return nil
	}
	d.last, d.hasLast = fp, true
	return d.Next.Render(ctx, snap)
}

func (d *Dedupe) Skipped() uint64 { return d.skipped }
