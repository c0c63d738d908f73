// Package event defines the typed events a speaker produces and the
// dispatcher that delivers them.
//
// The protocol package hands over decoded frames; Project translates each
// frame into zero or more typed events (VolumeEvent, PlaybackEvent,
// GroupEvent, ...). Unknown frame methods project to nothing, so firmware
// additions degrade silently instead of failing.
//
// # Dispatch
//
// A Dispatcher owns a bounded queue and a single delivery goroutine.
// Publish enqueues an event and blocks when the queue is full; events are
// never dropped, the producer slows down instead. The delivery goroutine
// first runs the apply hook (the state store installs itself here so state
// is updated before any subscriber observes the event), then invokes
// subscribers ordered by priority, ties broken by subscription order.
//
// A panicking subscriber is logged and skipped; it never affects other
// subscribers or the delivery loop. Subscribe and Unsubscribe may be
// called from inside a handler; changes take effect from the next event.
//
// # Waiting
//
// Await blocks until an event matching a predicate has been fully applied,
// or the context ends:
//
//	ev, err := d.Await(ctx, func(e event.Event) bool {
//	    return e.Kind() == event.KindVolume
//	})
//
// Command senders use this to wait for the reply frame, since the protocol
// has no correlation tokens.
package event
