// Package speaker is the client for Samsung WAM multiroom speakers.
//
// A Speaker wraps one control connection and everything behind it: the
// wire codec, the event dispatcher and the state store. Typical use:
//
//	sp := speaker.New("192.168.1.100")
//	defer sp.Close()
//
//	if err := sp.Connect(ctx); err != nil { ... }
//	if err := sp.Update(ctx); err != nil { ... }
//
//	sp.Subscribe(0, func(e event.Event) { ... })
//	sp.SetVolume(ctx, 40)
//
// # Commands and Replies
//
// The protocol has no correlation tokens, so a reply is recognized by its
// method name. Each command waits for the first matching frame within the
// request timeout, after its state changes have been applied; when a
// command method returns, State() already reflects it. Commands the
// speaker never answers (track skip, member grouping) return right after
// the write.
//
// # Grouping
//
// Multiroom groups span several Speaker instances. The master coordinates:
// CreateGroup, DeleteGroup and SetGroup run on the master and send the
// member-side commands through the member Speakers passed in. Membership
// changes always remove leaving members before forming the new group.
//
// # Errors
//
// All failures are *Error values categorized by ErrorType. Arguments are
// validated before anything is sent; a command that reaches the speaker
// and gets a non-ok reply fails with ErrTypeRejected.
package speaker
