package core

import (
	"context"
	"encoding/json"
	"errors"

	"farmcore/pkg/domain"
)

// ExportSnapshot encodes the latest committed document for backup.
func (s *Service) ExportSnapshot() ([]byte, error) {
	doc := s.store.Get()
	if doc == nil {
		return nil, errNotInitialized
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ImportSnapshot replaces the whole document with a previously exported
// one, in a single transaction. The import must carry a schema version;
// anything else is treated as corrupt input, not as a reason to reseed.
func (s *Service) ImportSnapshot(ctx context.Context, data []byte) error {
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.CorruptStateError{Err: err}
	}
	if doc.SchemaVersion <= 0 {
		return domain.CorruptStateError{Err: errors.New("import lacks a schema version")}
	}
	return s.store.Transaction(ctx, func(draft *domain.Document) error {
		// The engine stamps updatedAt after the mutator, keeping it
		// monotonic even when the import predates the current document.
		*draft = *normalize(doc.Clone())
		return nil
	})
}
