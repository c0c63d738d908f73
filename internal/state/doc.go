// Package state maintains the last known state of a speaker.
//
// The store is the single writer model around one Speaker value: the event
// dispatcher's apply hook is the only writer, so every mutation happens on
// the dispatcher's delivery goroutine before subscribers observe the
// triggering event. Readers take snapshots, never references.
//
// Events carry partial information; Apply merges each event into the
// fields it covers and leaves the rest alone. Absent fields on an event
// therefore never erase known state, with one deliberate exception: a
// group role of "N" clears the whole group block, since leaving a group
// invalidates it wholesale.
//
// # Assumed URL Playback
//
// Speakers accept a stream URL and then go silent about it: no later
// message reports URL playback as the active mode. The store tracks this
// with AssumedURLPlaying, set when the speaker accepts a URL and cleared
// as soon as any message contradicts it (a non-URL submode, a source
// change away from Wi-Fi, or playback stopping). Device messages win over
// the assumption, never the other way around.
package state
