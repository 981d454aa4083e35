package document

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/store"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Options configures the user and role stores.
type Options struct {
	// AutoSaveChanges commits the session at the end of Create, Update and
	// Delete. With it off, callers batch work and call SaveChanges.
	AutoSaveChanges bool

	// Describer produces the errors of failed results.
	Describer store.ErrorDescriber

	// Logger is used when the context carries no logger.
	Logger *slog.Logger
}

// DefaultOptions returns auto-save on and the default describer.
func DefaultOptions() Options {
	return Options{
		AutoSaveChanges: true,
		Describer:       store.DefaultErrorDescriber{},
	}
}

func (o Options) withDefaults() Options {
	if o.Describer == nil {
		o.Describer = store.DefaultErrorDescriber{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// sameName compares role names the way membership checks require:
// invariant upper-casing of both sides.
func sameName(a, b string) bool {
	upper := cases.Upper(language.Und)
	return upper.String(a) == upper.String(b)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// commit runs SaveChanges on the session and classifies the outcome:
// conflicts come back as a failed result and a nil error, everything else
// as an error.
func commit(
	ctx context.Context,
	session *docstore.Session,
	describer store.ErrorDescriber,
	log *slog.Logger,
	entity, operation, id string,
) (store.Result, error) {
	if err := session.SaveChanges(ctx); err != nil {
		if docstore.IsConcurrencyError(err) {
			log.Warn("concurrency conflict",
				slog.String("entity", entity),
				slog.String("operation", operation),
				slog.String("id", id))
			return store.Failed(describer.ConcurrencyFailure()), nil
		}
		return store.Result{}, store.NewStoreError(entity, operation, "failed to save changes", err)
	}
	return store.Success(), nil
}

// saveChanges is the explicit commit used with auto-save off. Conflicts
// surface as store.ErrConcurrencyFailure.
func saveChanges(ctx context.Context, session *docstore.Session) error {
	if err := session.SaveChanges(ctx); err != nil {
		if docstore.IsConcurrencyError(err) {
			return fmt.Errorf("%w: %w", store.ErrConcurrencyFailure, err)
		}
		return err
	}
	return nil
}
