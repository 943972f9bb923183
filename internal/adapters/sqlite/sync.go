package sqlite

import (
	"fmt"
	"time"

	"mdoc/internal/domain"
	"mdoc/internal/ports"
)

// Sync brings the index in line with docs. Documents whose source changed
// since the last sync are re-read through reader, vanished ones are
// removed. All changes land in a single transaction.
func (idx *Index) Sync(docs []domain.Document, reader ports.DocumentRepository) (*domain.SyncStats, error) {
	start := time.Now()
	stats := &domain.SyncStats{}

	existing, err := idx.storedNodes()
	if err != nil {
		return nil, err
	}

	tx, err := idx.begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		seen[doc.Path] = true
		stats.FilesScanned++

		node := nodeFor(doc)
		if !doc.IsVirtual {
			if mtime, ok := reader.LastModified(doc.Path); ok {
				node.Mtime = mtime.UnixNano()
			}
		}

		old, indexed := existing[doc.Path]
		if indexed && !changed(old, node) {
			continue
		}

		if !doc.IsVirtual {
			page, err := reader.ReadDocument(doc.Path)
			if err != nil {
				// Unreadable documents stay searchable by title
				node.Body = ""
			} else {
				node.Body = page.Content
			}
		}

		if err := tx.UpsertNode(node); err != nil {
			return nil, fmt.Errorf("failed to index %s: %w", doc.Path, err)
		}
		if indexed {
			stats.NodesUpdated++
		} else {
			stats.NodesAdded++
		}
	}

	for path := range existing {
		if seen[path] {
			continue
		}
		if err := tx.DeleteNode(path); err != nil {
			return nil, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		stats.NodesDeleted++
	}

	if err := tx.setMeta("last_sync_time", time.Now().UnixNano()); err != nil {
		return nil, fmt.Errorf("failed to record sync time: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sync: %w", err)
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// storedNodes loads every indexed document without its body
func (idx *Index) storedNodes() (map[string]domain.IndexNode, error) {
	rows, err := idx.db.Query(`
		SELECT path, title, section, section_order, ord, parent, is_virtual, mtime
		FROM documents
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	defer rows.Close()

	nodes := make(map[string]domain.IndexNode)
	for rows.Next() {
		var n domain.IndexNode
		if err := rows.Scan(&n.Path, &n.Title, &n.Section, &n.SectionOrder, &n.Order,
			&n.Parent, &n.IsVirtual, &n.Mtime); err != nil {
			return nil, err
		}
		nodes[n.Path] = n
	}
	return nodes, rows.Err()
}

func nodeFor(doc domain.Document) *domain.IndexNode {
	return &domain.IndexNode{
		Path:         doc.Path,
		Title:        doc.Title,
		Section:      doc.Section,
		SectionOrder: doc.SectionOrder,
		Order:        doc.Order,
		Parent:       doc.Parent,
		IsVirtual:    doc.IsVirtual,
	}
}

// changed compares everything but the body
func changed(old domain.IndexNode, node *domain.IndexNode) bool {
	return old.Mtime != node.Mtime ||
		old.Title != node.Title ||
		old.Section != node.Section ||
		old.SectionOrder != node.SectionOrder ||
		old.Order != node.Order ||
		old.Parent != node.Parent ||
		old.IsVirtual != node.IsVirtual
}
