package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/zenbook-app/zenbook/internal/book"
)

// Fallback prefers the remote store and falls back to the local one. Remote
// failures are logged, never returned; writes that fail remotely are applied
// locally so no edit is lost.
//
// With a remote configured the local store only holds chapters written
// during an outage. They are merged into reads and pushed to the remote by
// List once it answers again. A delete made during an outage is not
// replayed.
type Fallback struct {
	remote Store // nil when not configured
	local  Store
	log    *zap.Logger
}

// NewFallback combines remote and local stores. remote may be nil.
func NewFallback(remote, local Store, log *zap.Logger) *Fallback {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fallback{remote: remote, local: local, log: log}
}

// Backend names the preferred backend.
func (f *Fallback) Backend() string {
	if f.remote == nil {
		return f.local.Backend()
	}
	return f.remote.Backend()
}

// List returns remote chapters merged with pending local ones, or the local
// chapters when the remote fails.
func (f *Fallback) List(ctx context.Context) ([]book.Chapter, error) {
	if f.remote == nil {
		return f.local.List(ctx)
	}

	chapters, err := f.remote.List(ctx)
	if err != nil {
		f.warn("list", "", err)
		return f.local.List(ctx)
	}

	pending, err := f.local.List(ctx)
	if err != nil {
		f.log.Warn("Local chapter store failed, pending chapters skipped", zap.Error(err))
		return chapters, nil
	}
	if len(pending) == 0 {
		return chapters, nil
	}
	return f.flush(ctx, chapters, pending), nil
}

// flush merges pending local chapters into the remote list and pushes them
// to the remote. The newer copy of a chapter wins.
func (f *Fallback) flush(ctx context.Context, chapters, pending []book.Chapter) []book.Chapter {
	index := make(map[string]int, len(chapters))
	for i, ch := range chapters {
		index[ch.ID] = i
	}

	for _, ch := range pending {
		i, exists := index[ch.ID]
		if exists && chapters[i].UpdatedAt > ch.UpdatedAt {
			f.discard(ctx, ch.ID)
			continue
		}
		if exists {
			chapters[i] = ch
		} else {
			index[ch.ID] = len(chapters)
			chapters = append(chapters, ch)
		}

		if err := f.remote.Upsert(ctx, ch); err != nil {
			f.warn("sync", ch.ID, err)
			continue
		}
		f.log.Info("Pending chapter pushed to remote store", zap.String("id", ch.ID))
		f.discard(ctx, ch.ID)
	}

	book.Sort(chapters)
	return chapters
}

// discard drops the local copy of a chapter the remote now holds.
func (f *Fallback) discard(ctx context.Context, id string) {
	if err := f.local.Delete(ctx, id); err != nil {
		f.log.Warn("Failed to clear local chapter copy", zap.String("id", id), zap.Error(err))
	}
}

// Get returns the newer of the remote and the pending local copy, or the
// local one when the remote fails or does not know the chapter.
func (f *Fallback) Get(ctx context.Context, id string) (*book.Chapter, error) {
	if f.remote == nil {
		return f.local.Get(ctx, id)
	}

	ch, err := f.remote.Get(ctx, id)
	switch {
	case err == nil:
		if pending, lerr := f.local.Get(ctx, id); lerr == nil && pending.UpdatedAt > ch.UpdatedAt {
			return pending, nil
		}
		return ch, nil
	case !errors.Is(err, ErrNotFound):
		f.warn("get", id, err)
	}
	return f.local.Get(ctx, id)
}

// Upsert saves the chapter remotely, or locally when the remote fails.
func (f *Fallback) Upsert(ctx context.Context, ch book.Chapter) error {
	if f.remote != nil {
		err := f.remote.Upsert(ctx, ch)
		if err == nil {
			f.discard(ctx, ch.ID)
			return nil
		}
		f.warn("upsert", ch.ID, err)
	}
	if err := f.local.Upsert(ctx, ch); err != nil {
		return fmt.Errorf("local upsert: %w", err)
	}
	return nil
}

// Delete removes the chapter from both stores.
func (f *Fallback) Delete(ctx context.Context, id string) error {
	if f.remote != nil {
		if err := f.remote.Delete(ctx, id); err != nil {
			f.warn("delete", id, err)
		}
	}
	if err := f.local.Delete(ctx, id); err != nil {
		return fmt.Errorf("local delete: %w", err)
	}
	return nil
}

// Reorder moves the chapter to number. A pending local copy moves with it.
func (f *Fallback) Reorder(ctx context.Context, id string, number int) error {
	if f.remote != nil {
		err := f.remote.Reorder(ctx, id, number)
		if err == nil {
			if lerr := f.local.Reorder(ctx, id, number); lerr != nil && !errors.Is(lerr, ErrNotFound) {
				f.log.Warn("Failed to reorder local chapter copy", zap.String("id", id), zap.Error(lerr))
			}
			return nil
		}
		f.warn("reorder", id, err)
	}
	if err := f.local.Reorder(ctx, id, number); err != nil {
		return fmt.Errorf("local reorder: %w", err)
	}
	return nil
}

func (f *Fallback) warn(op, id string, err error) {
	f.log.Warn("Remote chapter store failed, using local fallback",
		zap.String("op", op),
		zap.String("id", id),
		zap.Error(err))
}

// Close closes both stores.
func (f *Fallback) Close() (err error) {
	if f.remote != nil {
		err = multierr.Append(err, f.remote.Close())
	}
	return multierr.Append(err, f.local.Close())
}
