package service

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipe-api/internal/models"
)

// resolveNames returns one entry per distinct name, looking each up by
// (owner, name) and creating it when absent. Names are resolved in sorted
// order so concurrent writers take the unique-index locks in the same order.
func resolveNames[T models.CatalogEntry](tx *gorm.DB, kind catalogKind[T], owner uuid.UUID, names []string, logger *zap.Logger) ([]T, error) {
	seen := make(map[string]struct{}, len(names))
	distinct := make([]string, 0, len(names))
	for _, raw := range names {
		name, err := cleanName(raw)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		distinct = append(distinct, name)
	}
	slices.Sort(distinct)

	out := make([]T, 0, len(distinct))
	for _, name := range distinct {
		entry, err := getOrCreate(tx, kind, owner, name, logger)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// getOrCreate inserts inside a savepoint so that losing a race to a
// concurrent insert of the same (owner, name) leaves the outer transaction
// usable for the retry lookup.
func getOrCreate[T models.CatalogEntry](tx *gorm.DB, kind catalogKind[T], owner uuid.UUID, name string, logger *zap.Logger) (T, error) {
	existing, err := lookupByName(tx, kind, owner, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return existing, err
	}

	entry := kind.build(owner, name)
	err = tx.Transaction(func(sp *gorm.DB) error {
		return sp.Create(&entry).Error
	})
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return entry, fmt.Errorf("failed to create %s %q: %w", kind.name, name, err)
	}

	logger.Debug("concurrent create, retrying lookup",
		zap.String("kind", kind.name),
		zap.String("name", name),
		zap.String("owner", owner.String()))

	existing, err = lookupByName(tx, kind, owner, name)
	if err != nil {
		return existing, fmt.Errorf("failed to resolve %s %q: %w", kind.name, name, err)
	}
	return existing, nil
}

func lookupByName[T models.CatalogEntry](tx *gorm.DB, kind catalogKind[T], owner uuid.UUID, name string) (T, error) {
	var entry T
	err := tx.Scopes(OwnedBy(owner)).Where("name = ?", name).Take(&entry).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		err = fmt.Errorf("failed to look up %s %q: %w", kind.name, name, err)
	}
	return entry, err
}
