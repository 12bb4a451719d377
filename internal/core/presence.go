package core

import "context"

// PresenceTracker records which support agents are on duty. The hub
// calls it on support connect/disconnect; a nil tracker disables the
// roster entirely. Failures are advisory and never block routing.
type PresenceTracker interface {
	SupportOnline(ctx context.Context, id, name string) error
	SupportOffline(ctx context.Context, id string) error
}
