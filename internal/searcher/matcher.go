package searcher

import (
	"sort"
	"strings"

	"github.com/dshills/bookcatalog/internal/indexer"
	"github.com/dshills/bookcatalog/pkg/types"
)

// Match is an index entry that scored above zero for a query
type Match struct {
	Entry indexer.Entry
	Score float64
}

// Result converts the match to its public form
func (m Match) Result() types.SearchResult {
	return types.SearchResult{
		BookID:   m.Entry.BookID,
		Score:    m.Score,
		Metadata: m.Entry.Metadata,
		Content:  m.Entry.Content,
	}
}

// ScoreAndRank scores every entry by the fraction of query terms found as
// substrings of its content. Duplicate terms count once per occurrence.
// Zero scores are dropped, ties keep ascending book ID order, and at most
// topK matches are returned.
func ScoreAndRank(entries []indexer.Entry, query string, topK int) []Match {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 || topK <= 0 {
		return nil
	}

	matches := make([]Match, 0)
	for _, e := range entries {
		content := strings.ToLower(e.Content)
		hits := 0
		for _, term := range terms {
			if strings.Contains(content, term) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		matches = append(matches, Match{Entry: e, Score: float64(hits) / float64(len(terms))})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Entry.BookID < matches[j].Entry.BookID
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}
