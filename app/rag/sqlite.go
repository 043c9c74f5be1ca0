package rag

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	_ "modernc.org/sqlite"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteStore is an embedded vector store: chunks and their embeddings live in one SQLite table and
// queries rank every candidate row by cosine similarity.
type SQLiteStore struct {
	db    *sql.DB
	table string
}

func NewSQLiteStore(path, table string) (*SQLiteStore, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store at %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %[1]s (
            id TEXT PRIMARY KEY,
            source TEXT NOT NULL,
            hash TEXT NOT NULL,
            content TEXT NOT NULL,
            metadata TEXT NOT NULL,
            vector BLOB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_%[1]s_source ON %[1]s (source, hash);
    `, table))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}
	return &SQLiteStore{db: db, table: table}, nil
}

func (s *SQLiteStore) InitContext(ctx context.Context, _ int) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&n)
	return n > 0, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertBatch(ctx context.Context, docs []VectorDoc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT OR REPLACE INTO %s (id, source, hash, content, metadata, vector) VALUES (?, ?, ?, ?, ?, ?)`, s.table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range docs {
		meta, err := json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata of %s: %w", d.ID, err)
		}
		source, _ := d.Metadata[metaSource].(string)
		hash, _ := d.Metadata[metaHash].(string)
		if _, err = stmt.ExecContext(ctx, d.ID, source, hash, d.Content, string(meta), encodeVector(d.Vector)); err != nil {
			return fmt.Errorf("insert %s: %w", d.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Query(ctx context.Context, vector []float32, filters map[string]string, k int) ([]VectorDoc, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, content, metadata, vector FROM %s`, s.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VectorDoc
	for rows.Next() {
		var (
			d    VectorDoc
			meta string
			blob []byte
		)
		if err = rows.Scan(&d.ID, &d.Content, &meta, &blob); err != nil {
			return nil, err
		}
		if err = json.Unmarshal([]byte(meta), &d.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata of %s: %w", d.ID, err)
		}
		if !matchesFilters(d.Metadata, filters) {
			continue
		}
		d.Score = cosine(vector, decodeVector(blob))
		d.Metadata[metaText] = d.Content
		out = append(out, d)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (s *SQLiteStore) HasSource(ctx context.Context, source, hash string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE source = ? AND hash = ?`, s.table), source, hash,
	).Scan(&n)
	return n > 0, err
}

func (s *SQLiteStore) DeleteSource(ctx context.Context, source string) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE source = ?`, s.table), source)
	return err
}

func matchesFilters(md map[string]any, filters map[string]string) bool {
	for key, want := range filters {
		if fmt.Sprintf("%v", md[key]) != want {
			return false
		}
	}
	return true
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
