package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"leasing-import-backend/internal/services/importer"
)

// SuggestionThreshold is the lowest similarity worth showing to an operator.
const SuggestionThreshold = 60.0

type Suggestion struct {
	Client ClientRecord `json:"client"`
	Score  float64      `json:"score"`
}

// Suggest ranks near-miss directory entries for a client that did not match.
// It never changes the outcome of Match.
func (m *Matcher) Suggest(c importer.ClientIdentity, limit int) []Suggestion {
	queries := make([]string, 0, 2)
	for _, p := range []string{Canonicalize(c.Company), Canonicalize(c.Name)} {
		if p != "" {
			queries = append(queries, p)
		}
	}
	if len(queries) == 0 || limit <= 0 {
		return nil
	}

	var out []Suggestion
	for _, e := range m.dir.entries {
		best := 0.0
		for _, p := range queries {
			for _, candidate := range []string{e.company, e.name} {
				if candidate == "" {
					continue
				}
				if score := nameSimilarity(p, candidate); score > best {
					best = score
				}
			}
		}
		if best >= SuggestionThreshold {
			out = append(out, Suggestion{Client: e.record, Score: math.Round(best*100) / 100})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// nameSimilarity averages, over the candidate's tokens, the best token
// similarity found in the query. Both inputs are already canonical.
func nameSimilarity(query, candidate string) float64 {
	pTokens := strings.Fields(query)
	cTokens := strings.Fields(candidate)
	if len(cTokens) == 0 || len(pTokens) == 0 {
		return 0
	}

	total := 0.0
	for _, ct := range cTokens {
		best := 0.0
		for _, pt := range pTokens {
			dist := fuzzy.LevenshteinDistance(ct, pt)
			maxLen := math.Max(float64(len([]rune(ct))), float64(len([]rune(pt))))
			sim := 1 - float64(dist)/maxLen
			if sim > best {
				best = sim
			}
		}
		total += best
	}
	return total / float64(len(cTokens)) * 100
}
