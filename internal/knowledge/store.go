// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge stores delimiter-split text blocks in SQLite and answers
// similarity queries over them. Blocks persist in a single database with an
// FTS5 index for candidate selection; a TF-IDF model held in memory scores
// the candidates at query time.
package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/panjf2000/ants/v2"

	"github.com/pdiddy/answer-engine/pkg/types"
)

const (
	dbFile         = "knowledge.db"
	blockDelimiter = "---"
	// minBlockLength filters out fragments too short to carry meaning.
	// Blocks of exactly this length are kept.
	minBlockLength = 20
	defaultTopN    = 5
)

// Store manages the knowledge base SQLite database and the in-memory
// similarity index derived from it.
type Store struct {
	db       *sql.DB
	indexDir string
	topN     int

	mu     sync.RWMutex
	model  *vectorizer
	blocks []indexedBlock
	byRow  map[int64]int
}

// indexedBlock is one knowledge block held in memory for scoring.
type indexedBlock struct {
	rowid   int64
	id      string
	content string
	vector  []float64
}

// NewStore opens or creates the knowledge database at cfg.IndexDir/knowledge.db,
// creates the schema if it does not exist, and builds the similarity index
// from any blocks already stored.
func NewStore(cfg types.KnowledgeConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	topN := cfg.TopN
	if topN <= 0 {
		topN = defaultTopN
	}

	s := &Store{
		db:       db,
		indexDir: cfg.IndexDir,
		topN:     topN,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if err := s.rebuildIndex(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("building similarity index: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS blocks (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			source_file TEXT NOT NULL,
			content TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_source_file ON blocks(source_file)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='blocks_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE blocks_fts USING fts5(content, content=blocks, content_rowid=rowid)`,
			`CREATE TRIGGER blocks_ai AFTER INSERT ON blocks BEGIN
				INSERT INTO blocks_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER blocks_ad AFTER DELETE ON blocks BEGIN
				INSERT INTO blocks_fts(blocks_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER blocks_au AFTER UPDATE ON blocks BEGIN
				INSERT INTO blocks_fts(blocks_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO blocks_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// LoadSummary holds counts from a knowledge loading run.
type LoadSummary struct {
	Files   int
	Blocks  int
	Dropped int
	// AlreadyLoaded reports that the store held blocks before the run and
	// nothing was changed.
	AlreadyLoaded bool
}

// Load reads every .txt file in sourceDir, splits the contents on the "---"
// delimiter, and stores each block at least minBlockLength characters long
// under a sequential doc_N identifier. Loading is idempotent: when the store
// already holds blocks, Load reports success without touching them. A missing
// directory, or a directory yielding no usable blocks, is an error.
func (s *Store) Load(ctx context.Context, sourceDir string, w io.Writer) (LoadSummary, error) {
	existing, err := s.Count(ctx)
	if err != nil {
		return LoadSummary{}, err
	}
	if existing > 0 {
		fmt.Fprintf(w, "knowledge base already loaded (%d blocks)\n", existing)
		return LoadSummary{Blocks: existing, AlreadyLoaded: true}, nil
	}

	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return LoadSummary{}, fmt.Errorf("reading knowledge directory %s: %w", sourceDir, err)
	}

	var summary LoadSummary
	type fileBlocks struct {
		name   string
		blocks []string
	}
	var files []fileBlocks

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		data, err := os.ReadFile(filepath.Join(sourceDir, entry.Name()))
		if err != nil {
			return summary, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}

		kept, dropped := splitBlocks(string(data))
		summary.Files++
		summary.Blocks += len(kept)
		summary.Dropped += dropped
		files = append(files, fileBlocks{name: entry.Name(), blocks: kept})

		fmt.Fprintf(w, "loaded  %s (%d blocks)\n", entry.Name(), len(kept))
	}

	if summary.Blocks == 0 {
		return summary, fmt.Errorf("no usable knowledge blocks found in %s", sourceDir)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO blocks (id, source_file, content) VALUES (?, ?, ?)`)
	if err != nil {
		return summary, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	docID := 0
	for _, f := range files {
		for _, content := range f.blocks {
			if _, err := stmt.ExecContext(ctx, fmt.Sprintf("doc_%d", docID), f.name, content); err != nil {
				return summary, fmt.Errorf("inserting block doc_%d: %w", docID, err)
			}
			docID++
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing blocks: %w", err)
	}

	if err := s.rebuildIndex(ctx); err != nil {
		return summary, fmt.Errorf("building similarity index: %w", err)
	}

	fmt.Fprintf(w, "\nfiles: %d, blocks: %d, dropped: %d\n",
		summary.Files, summary.Blocks, summary.Dropped)

	return summary, nil
}

// splitBlocks splits raw file content on the block delimiter, trims each
// piece, and separates usable blocks from dropped fragments.
func splitBlocks(content string) (kept []string, dropped int) {
	for _, piece := range strings.Split(content, blockDelimiter) {
		block := strings.TrimSpace(piece)
		if len(block) < minBlockLength {
			dropped++
			continue
		}
		kept = append(kept, block)
	}
	return kept, dropped
}

// Count returns the number of blocks in the store.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM blocks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting blocks: %w", err)
	}
	return n, nil
}

// rebuildIndex loads every block from the database, fits the TF-IDF model on
// the corpus, and vectorizes the blocks on a worker pool before swapping the
// new index in.
func (s *Store) rebuildIndex(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rowid, id, content FROM blocks ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("reading blocks: %w", err)
	}
	defer rows.Close()

	var blocks []indexedBlock
	for rows.Next() {
		var b indexedBlock
		if err := rows.Scan(&b.rowid, &b.id, &b.content); err != nil {
			return fmt.Errorf("scanning block: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating blocks: %w", err)
	}

	corpus := make([]string, len(blocks))
	for i, b := range blocks {
		corpus[i] = b.content
	}
	model := newVectorizer(corpus)

	if len(blocks) > 0 {
		pool, err := ants.NewPool(runtime.NumCPU())
		if err != nil {
			return fmt.Errorf("creating vectorize pool: %w", err)
		}
		defer pool.Release()

		var wg sync.WaitGroup
		for i := range blocks {
			i := i
			wg.Add(1)
			if err := pool.Submit(func() {
				defer wg.Done()
				blocks[i].vector = model.vector(blocks[i].content)
			}); err != nil {
				wg.Done()
				return fmt.Errorf("scheduling vectorize job: %w", err)
			}
		}
		wg.Wait()
	}

	byRow := make(map[int64]int, len(blocks))
	for i, b := range blocks {
		byRow[b.rowid] = i
	}

	s.mu.Lock()
	s.model = model
	s.blocks = blocks
	s.byRow = byRow
	s.mu.Unlock()

	return nil
}

// sortByDistance orders scored blocks best-first, breaking ties by rowid so
// results are deterministic.
func sortByDistance(scored []scoredBlock) {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].distance != scored[j].distance {
			return scored[i].distance < scored[j].distance
		}
		return scored[i].rowid < scored[j].rowid
	})
}
