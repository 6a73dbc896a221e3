package attendance

import "context"

// Command is one optimistic mutation: Apply writes the new state to the
// local cache immediately, Commit persists it remotely, Rollback restores
// the pre-Apply snapshot. The caller sequences apply -> commit ->
// (confirm | rollback); nothing here knows about any particular data
// layer.
type Command struct {
	Apply    func()
	Commit   func(ctx context.Context) error
	Rollback func()
}

// Run executes the optimistic sequence. The local state is updated before
// the remote call so the UI sees the change with zero latency; a failed
// commit restores the snapshot and reports the error.
func (c Command) Run(ctx context.Context) error {
	c.Apply()
	if err := c.Commit(ctx); err != nil {
		c.Rollback()
		return err
	}
	return nil
}
