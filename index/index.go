// Package index builds a disposable per-request similarity index over text
// units. The index lives for one call: build it, search it, release it. There
// is no cross-request caching, so newly written records are always visible.
package index

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/forsa/assistant/embeddings"
)

// Source tags for TextUnit metadata. Conversation evidence merges into the
// payload directly and never passes through the index; its tag exists so the
// source vocabulary is complete in one place.
const (
	SourceProfile      = "profile"
	SourceCV           = "cv"
	SourceInternship   = "internship"
	SourceConversation = "conversation"

	// MetaSource is the metadata key every unit carries.
	MetaSource = "source"

	metaPos = "pos"
)

// TextUnit is one embeddable piece of evidence. Text is never empty and
// Metadata always carries a source tag.
type TextUnit struct {
	Text     string
	Metadata map[string]string
}

// Match pairs a retrieved unit with its similarity score.
type Match struct {
	Unit  TextUnit
	Score float64
}

// Index is an in-memory similarity index over one request's units.
type Index struct {
	collection *chromem.Collection
	count      int
}

// Build embeds every unit and loads it into a fresh in-memory collection.
// Units with empty text are skipped. An empty unit set yields a valid index
// whose searches return no matches.
func Build(ctx context.Context, embedder embeddings.Embedder, units []TextUnit) (*Index, error) {
	kept := make([]TextUnit, 0, len(units))
	texts := make([]string, 0, len(units))
	for _, unit := range units {
		if unit.Text == "" {
			continue
		}
		kept = append(kept, unit)
		texts = append(texts, unit.Text)
	}

	queryEmbed := func(ctx context.Context, text string) ([]float32, error) {
		return embeddings.EmbedOne(ctx, embedder, text)
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection("request-context", nil, queryEmbed)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	idx := &Index{collection: collection}
	if len(kept) == 0 {
		return idx, nil
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed units: %w", err)
	}
	if len(vectors) != len(kept) {
		return nil, fmt.Errorf("embedding count mismatch: %d units, %d vectors", len(kept), len(vectors))
	}

	docs := make([]chromem.Document, len(kept))
	for i, unit := range kept {
		meta := make(map[string]string, len(unit.Metadata)+1)
		for k, v := range unit.Metadata {
			meta[k] = v
		}
		meta[metaPos] = strconv.Itoa(i)

		docs[i] = chromem.Document{
			ID:        "unit-" + strconv.Itoa(i),
			Content:   unit.Text,
			Metadata:  meta,
			Embedding: vectors[i],
		}
	}

	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("add documents: %w", err)
	}
	idx.count = len(docs)
	return idx, nil
}

// Search embeds the query and returns up to k units ranked by similarity,
// ties broken by original insertion order. An empty index yields an empty
// result without error.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]Match, error) {
	if idx == nil || idx.collection == nil || idx.count == 0 || k <= 0 {
		return []Match{}, nil
	}
	if k > idx.count {
		k = idx.count
	}

	results, err := idx.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	// Re-rank so equal scores keep insertion order.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return insertionPos(results[i].Metadata) < insertionPos(results[j].Metadata)
	})

	matches := make([]Match, len(results))
	for i, res := range results {
		meta := make(map[string]string, len(res.Metadata))
		for key, value := range res.Metadata {
			if key == metaPos {
				continue
			}
			meta[key] = value
		}
		matches[i] = Match{
			Unit:  TextUnit{Text: res.Content, Metadata: meta},
			Score: float64(res.Similarity),
		}
	}
	return matches, nil
}

// Release drops the collection reference. The index is unusable afterwards;
// searches return empty results.
func (idx *Index) Release() {
	if idx == nil {
		return
	}
	idx.collection = nil
	idx.count = 0
}

func insertionPos(meta map[string]string) int {
	pos, err := strconv.Atoi(meta[metaPos])
	if err != nil {
		return 0
	}
	return pos
}
