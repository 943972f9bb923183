package sqlite

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"mdoc/internal/domain"
	"mdoc/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "2"

// snippetRadius is the number of bytes kept on each side of a body match
const snippetRadius = 40

// Index implements ports.SearchIndex using SQLite
type Index struct {
	db       *sql.DB
	docsRoot string
	dbPath   string
}

// Ensure Index implements SearchIndex
var _ ports.SearchIndex = (*Index)(nil)

// NewIndex creates a new SQLite index for the given docs directory
func NewIndex(docsRoot string) *Index {
	return &Index{docsRoot: docsRoot}
}

// Open initializes the database at path, or at DatabasePath when path is empty
func (idx *Index) Open(path string) error {
	if path == "" {
		path = DatabasePath(idx.docsRoot)
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	idx.dbPath = path

	if err := os.MkdirAll(filepath.Dir(idx.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite", idx.dbPath+"?_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	idx.db = db

	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS documents (
			path TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			section TEXT NOT NULL,
			section_order INTEGER NOT NULL,
			ord INTEGER NOT NULL,
			parent TEXT NOT NULL DEFAULT '',
			is_virtual INTEGER NOT NULL DEFAULT 0,
			mtime INTEGER NOT NULL,
			body TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_documents_section ON documents(section_order, ord);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup database: %w", err)
	}

	if idx.NeedsFullRebuild() {
		if _, err := db.Exec(`DELETE FROM documents`); err != nil {
			db.Close()
			return fmt.Errorf("failed to reset index: %w", err)
		}
	}
	if err := idx.updateMeta(); err != nil {
		db.Close()
		return fmt.Errorf("failed to update metadata: %w", err)
	}

	return nil
}

// Close closes the database connection
func (idx *Index) Close() error {
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// Path returns the database file location
func (idx *Index) Path() string {
	return idx.dbPath
}

// NeedsFullRebuild returns true if the stored data was written by another
// schema version or for another docs directory
func (idx *Index) NeedsFullRebuild() bool {
	var version, rootHash string

	idx.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&version)
	idx.db.QueryRow("SELECT value FROM meta WHERE key = 'docs_root_hash'").Scan(&rootHash)

	return version != schemaVersion || rootHash != hashRoot(idx.docsRoot)
}

// LastSync returns when Sync last committed, if ever
func (idx *Index) LastSync() (time.Time, bool) {
	var nanos int64
	err := idx.db.QueryRow("SELECT value FROM meta WHERE key = 'last_sync_time'").Scan(&nanos)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(0, nanos), true
}

// DatabasePath returns the default database location for a docs directory
func DatabasePath(docsRoot string) string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "mdoc", hashRoot(docsRoot)+".db")
}

// hashRoot returns a short hash of the docs directory
func hashRoot(docsRoot string) string {
	h := sha256.Sum256([]byte(docsRoot))
	return hex.EncodeToString(h[:8])
}

func (idx *Index) updateMeta() error {
	_, err := idx.db.Exec(`
		INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?);
		INSERT OR REPLACE INTO meta (key, value) VALUES ('docs_root_hash', ?);
	`, schemaVersion, hashRoot(idx.docsRoot))
	return err
}

// GetNode retrieves a document by path. A missing document yields nil.
func (idx *Index) GetNode(path string) (*domain.IndexNode, error) {
	var node domain.IndexNode

	err := idx.db.QueryRow(`
		SELECT path, title, section, section_order, ord, parent, is_virtual, mtime, body
		FROM documents WHERE path = ?
	`, path).Scan(&node.Path, &node.Title, &node.Section, &node.SectionOrder, &node.Order,
		&node.Parent, &node.IsVirtual, &node.Mtime, &node.Body)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// Count returns the number of indexed documents
func (idx *Index) Count() (int, error) {
	var n int
	err := idx.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

// Search returns documents whose path, title or body contain query,
// ignoring ASCII case, in catalog order
func (idx *Index) Search(query string, limit int) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = -1
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := idx.db.Query(`
		SELECT path, title, section, body
		FROM documents
		WHERE title LIKE ?1 ESCAPE '\' OR body LIKE ?1 ESCAPE '\' OR path LIKE ?1 ESCAPE '\'
		ORDER BY section_order, section, ord, title, path
		LIMIT ?2
	`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var r domain.SearchResult
		var body string
		if err := rows.Scan(&r.Path, &r.Title, &r.Section, &body); err != nil {
			return nil, err
		}
		r.MatchedText = snippet(r.Title, body, query)
		results = append(results, r)
	}

	return results, rows.Err()
}

// BeginTx starts a new transaction
func (idx *Index) BeginTx() (ports.IndexTx, error) {
	return idx.begin()
}

func (idx *Index) begin() (*indexTx, error) {
	tx, err := idx.db.Begin()
	if err != nil {
		return nil, err
	}
	return &indexTx{tx: tx}, nil
}

// escapeLike escapes the LIKE wildcards in s
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// snippet returns the text around the first body match, or the title
// when the body does not contain the query. Matching folds ASCII case
// only, like LIKE does, so offsets in the folded body are valid in body.
func snippet(title, body, query string) string {
	at := strings.Index(foldASCII(body), foldASCII(query))
	if at < 0 {
		return title
	}

	start := max(at-snippetRadius, 0)
	for start > 0 && !utf8.RuneStart(body[start]) {
		start--
	}
	end := min(at+len(query)+snippetRadius, len(body))
	for end < len(body) && !utf8.RuneStart(body[end]) {
		end++
	}

	text := strings.Join(strings.Fields(body[start:end]), " ")
	if start > 0 {
		text = "…" + text
	}
	if end < len(body) {
		text += "…"
	}
	return text
}

// foldASCII lowercases A-Z and leaves every other byte alone
func foldASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
