package index

import (
	"context"
	"errors"
	"log/slog"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/checksum"
	"github.com/starford/jera/internal/storage"
)

// Sync brings the searchable bodies in the index up to date with the content store:
//   - changed content is re-read and its body refreshed
//   - indexed todos whose content disappeared get an empty body
//
// Content without a matching todo is left alone and only logged.
func Sync(ctx context.Context, db TodoIndex, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List(ctx)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums(ctx)
	if err != nil {
		return err
	}

	stored := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		stored[m.ID] = struct{}{}

		cs, indexed := checksums[m.ID]
		if !indexed {
			logger.Warn("sync: content without todo", slog.String("id", m.ID))
			continue
		}
		if cs == m.Checksum {
			continue
		}
		if err := reindex(ctx, db, store, m.ID); err != nil {
			logger.Warn("sync: index failed", slog.String("id", m.ID), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("id", m.ID))
		}
	}

	empty := checksum.String("")
	for id, cs := range checksums {
		if _, ok := stored[id]; ok || cs == "" || cs == empty {
			continue
		}
		if _, err := db.SetBody(ctx, id, ""); err != nil {
			logger.Warn("sync: clear body failed", slog.String("id", id), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: cleared missing content", slog.String("id", id))
		}
	}

	return nil
}

// reindex reads the content of id and refreshes its body. Missing content clears it.
func reindex(ctx context.Context, db TodoIndex, store storage.Provider, id string) error {
	content, err := store.Get(ctx, id)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	_, err = db.SetBody(ctx, id, content)
	return err
}
