// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// ftsCandidateLimit caps how many FTS matches are rescored per query.
const ftsCandidateLimit = 50

// scoredBlock pairs a block with its distance to the current query.
type scoredBlock struct {
	rowid    int64
	id       string
	content  string
	distance float64
}

// Result is one scored block returned to CLI callers.
type Result struct {
	ID       string  `json:"id" yaml:"id"`
	Content  string  `json:"content" yaml:"content"`
	Distance float64 `json:"distance" yaml:"distance"`
}

// Query returns the topN blocks most similar to text, joined by a "\n---\n"
// separator, together with the best (lowest) distance among them. Distances
// run from 0 for an exact match to 2 for no shared vocabulary. When topN is
// zero the store default applies. An empty store or a failed lookup returns
// ("", +Inf) rather than an error.
func (s *Store) Query(ctx context.Context, text string, topN int) (string, float64) {
	scored, err := s.retrieve(ctx, text, topN)
	if err != nil || len(scored) == 0 {
		return "", math.Inf(1)
	}

	contents := make([]string, len(scored))
	best := math.Inf(1)
	for i, b := range scored {
		contents[i] = b.content
		if b.distance < best {
			best = b.distance
		}
	}
	return strings.Join(contents, "\n---\n"), best
}

// Search returns the topN blocks most similar to text with their distances.
// Unlike Query it reports lookup errors to the caller.
func (s *Store) Search(ctx context.Context, text string, topN int) ([]Result, error) {
	scored, err := s.retrieve(ctx, text, topN)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(scored))
	for i, b := range scored {
		results[i] = Result{ID: b.id, Content: b.content, Distance: b.distance}
	}
	return results, nil
}

// retrieve selects candidate blocks through the FTS index, falls back to the
// full corpus when the query shares no indexed terms, and reranks candidates
// by vector distance.
func (s *Store) retrieve(ctx context.Context, text string, topN int) ([]scoredBlock, error) {
	if topN <= 0 {
		topN = s.topN
	}

	s.mu.RLock()
	model := s.model
	blocks := s.blocks
	byRow := s.byRow
	s.mu.RUnlock()

	if model == nil || len(blocks) == 0 {
		return nil, nil
	}

	queryVec := model.vector(text)

	candidates, err := s.ftsCandidates(ctx, text)
	if err != nil {
		return nil, err
	}

	var scored []scoredBlock
	if len(candidates) > 0 {
		scored = make([]scoredBlock, 0, len(candidates))
		for _, rowid := range candidates {
			idx, ok := byRow[rowid]
			if !ok {
				continue
			}
			b := blocks[idx]
			scored = append(scored, scoredBlock{
				rowid:    b.rowid,
				id:       b.id,
				content:  b.content,
				distance: distance(queryVec, b.vector),
			})
		}
	}

	// Queries sharing no indexed terms still answer with the nearest blocks.
	if len(scored) == 0 {
		scored = make([]scoredBlock, 0, len(blocks))
		for _, b := range blocks {
			scored = append(scored, scoredBlock{
				rowid:    b.rowid,
				id:       b.id,
				content:  b.content,
				distance: distance(queryVec, b.vector),
			})
		}
	}

	sortByDistance(scored)
	if len(scored) > topN {
		scored = scored[:topN]
	}
	return scored, nil
}

// ftsCandidates returns the rowids of the best FTS matches for the query
// terms, ranked by bm25. A query with no usable terms yields no candidates.
func (s *Store) ftsCandidates(ctx context.Context, text string) ([]int64, error) {
	match := ftsMatchExpr(text)
	if match == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT rowid FROM blocks_fts WHERE blocks_fts MATCH ? ORDER BY rank LIMIT ?`,
		match, ftsCandidateLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying FTS index: %w", err)
	}
	defer rows.Close()

	var rowids []int64
	for rows.Next() {
		var rowid int64
		if err := rows.Scan(&rowid); err != nil {
			return nil, fmt.Errorf("scanning FTS match: %w", err)
		}
		rowids = append(rowids, rowid)
	}
	return rowids, rows.Err()
}

// ftsMatchExpr quotes each query token and joins them with OR, so any shared
// term yields a candidate and punctuation in the raw question cannot break
// the MATCH syntax.
func ftsMatchExpr(text string) string {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return ""
	}
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = `"` + tok + `"`
	}
	return strings.Join(quoted, " OR ")
}
