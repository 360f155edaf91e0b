// Package search maintains a full-text index over persisted
// conversation transcripts so runs can be located by content.
package search

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	_ "github.com/blevesearch/bleve/v2/search/highlight/highlighter/ansi"

	"github.com/adalundhe/psyche/core/dialogue"
)

// Document is the indexed form of one conversation run.
type Document struct {
	RunID       string `json:"run_id"`
	Client      int    `json:"client"`
	Experiment  int    `json:"experiment"`
	PacaVersion string `json:"paca_version"`
	SpVersion   string `json:"sp_version"`
	Transcript  string `json:"transcript"`
}

// Hit is one search result with highlighted transcript fragments.
type Hit struct {
	ID         string
	Client     int
	Experiment int
	Score      float64
	Fragments  []string
}

// Index wraps a bleve index stored on disk.
type Index struct {
	index bleve.Index
}

// Open opens the index at path, creating it when absent.
func Open(path string) (*Index, error) {
	index, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		mapping := bleve.NewIndexMapping()
		index, err = bleve.New(path, mapping)
	}
	if err != nil {
		return nil, fmt.Errorf("open search index: %w", err)
	}
	return &Index{index: index}, nil
}

// DocumentID is the stable identity of a run in the index; re-indexing
// the same run replaces the previous document.
func DocumentID(client, experiment int) string {
	return fmt.Sprintf("client_%d_exp_%d", client, experiment)
}

// IndexConversation adds or replaces one conversation run.
func (i *Index) IndexConversation(record *dialogue.Record, client, experiment int) error {
	doc := Document{
		RunID:       record.RunID,
		Client:      client,
		Experiment:  experiment,
		PacaVersion: record.PacaVersion,
		SpVersion:   record.SpVersion,
		Transcript:  flattenTranscript(record.Data),
	}
	if err := i.index.Index(DocumentID(client, experiment), doc); err != nil {
		return fmt.Errorf("index conversation %s: %w", DocumentID(client, experiment), err)
	}
	return nil
}

// Search runs a query-string search over indexed transcripts.
func (i *Index) Search(query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}
	request := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(query), limit, 0, false)
	request.Fields = []string{"client", "experiment"}
	request.Highlight = bleve.NewHighlightWithStyle("ansi")
	request.Highlight.AddField("transcript")

	result, err := i.index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, match := range result.Hits {
		hit := Hit{ID: match.ID, Score: match.Score}
		if client, ok := match.Fields["client"].(float64); ok {
			hit.Client = int(client)
		}
		if experiment, ok := match.Fields["experiment"].(float64); ok {
			hit.Experiment = int(experiment)
		}
		hit.Fragments = match.Fragments["transcript"]
		hits = append(hits, hit)
	}
	return hits, nil
}

// Close releases the index.
func (i *Index) Close() error {
	return i.index.Close()
}

func flattenTranscript(turns []dialogue.Turn) string {
	var b strings.Builder
	for _, turn := range turns {
		b.WriteString(string(turn.Speaker))
		b.WriteString(": ")
		b.WriteString(turn.Utterance)
		b.WriteString("\n")
	}
	return b.String()
}
