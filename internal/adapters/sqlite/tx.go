package sqlite

import (
	"database/sql"

	"mdoc/internal/domain"
	"mdoc/internal/ports"
)

// indexTx implements ports.IndexTx
type indexTx struct {
	tx *sql.Tx
}

// Ensure indexTx implements IndexTx
var _ ports.IndexTx = (*indexTx)(nil)

// UpsertNode inserts or updates a document
func (t *indexTx) UpsertNode(node *domain.IndexNode) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO documents (path, title, section, section_order, ord, parent, is_virtual, mtime, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, node.Path, node.Title, node.Section, node.SectionOrder, node.Order,
		node.Parent, node.IsVirtual, node.Mtime, node.Body)
	return err
}

// DeleteNode removes a document by path
func (t *indexTx) DeleteNode(path string) error {
	_, err := t.tx.Exec(`DELETE FROM documents WHERE path = ?`, path)
	return err
}

// setMeta stores a metadata value alongside the documents
func (t *indexTx) setMeta(key string, value any) error {
	_, err := t.tx.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// Commit commits the transaction
func (t *indexTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *indexTx) Rollback() error {
	return t.tx.Rollback()
}
