package retrieval

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// stopwords are common English and code-churn words excluded from both
// relevance vectors and commit keyword matching.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true,
	"has": true, "have": true, "in": true, "int": true, "is": true,
	"it": true, "its": true, "not": true, "of": true, "on": true,
	"or": true, "that": true, "the": true, "this": true, "to": true,
	"was": true, "when": true, "where": true, "which": true, "will": true,
	"with": true,
}

// tokenize lowercases text and splits on non-alphanumeric runes, dropping
// stop-words and single characters.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 1 && !stopwords[f] {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// rankByRelevance scores every document against the query with TF-IDF
// cosine similarity and returns document indices in descending score order
// (ties keep input order). The vocabulary is bounded at vocabSize terms,
// kept by descending document frequency with lexicographic tie-break so
// identical inputs always rank identically. ok is false when the corpus is
// degenerate (no shared vocabulary); callers fall back to input order.
func rankByRelevance(query string, docs []string, vocabSize int) (order []int, scores []float64, ok bool) {
	if len(docs) == 0 {
		return nil, nil, false
	}

	queryTokens := tokenize(query)
	docTokens := make([][]string, len(docs))
	for i, d := range docs {
		docTokens[i] = tokenize(d)
	}

	vocab := buildVocabulary(queryTokens, docTokens, vocabSize)
	if len(vocab) == 0 {
		return nil, nil, false
	}

	idf := inverseDocFrequency(vocab, docTokens)
	queryVec := vectorize(queryTokens, vocab, idf)
	if norm(queryVec) == 0 {
		return nil, nil, false
	}

	scores = make([]float64, len(docs))
	anyHit := false
	for i, tokens := range docTokens {
		scores[i] = cosine(queryVec, vectorize(tokens, vocab, idf))
		if scores[i] > 0 {
			anyHit = true
		}
	}
	if !anyHit {
		return nil, nil, false
	}

	order = make([]int, len(docs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order, scores, true
}

// buildVocabulary assigns an index to every term, bounded at vocabSize.
// When the corpus exceeds the bound, terms with higher document frequency
// win; equal frequencies break lexicographically.
func buildVocabulary(queryTokens []string, docTokens [][]string, vocabSize int) map[string]int {
	df := make(map[string]int)
	seen := make(map[string]bool)
	count := func(tokens []string) {
		for k := range seen {
			delete(seen, k)
		}
		for _, t := range tokens {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}
	count(queryTokens)
	for _, tokens := range docTokens {
		count(tokens)
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(a, b int) bool {
		if df[terms[a]] != df[terms[b]] {
			return df[terms[a]] > df[terms[b]]
		}
		return terms[a] < terms[b]
	})
	if vocabSize > 0 && len(terms) > vocabSize {
		terms = terms[:vocabSize]
	}

	vocab := make(map[string]int, len(terms))
	for i, t := range terms {
		vocab[t] = i
	}
	return vocab
}

func inverseDocFrequency(vocab map[string]int, docTokens [][]string) []float64 {
	n := len(docTokens)
	counts := make([]int, len(vocab))
	seen := make(map[string]bool)
	for _, tokens := range docTokens {
		for k := range seen {
			delete(seen, k)
		}
		for _, t := range tokens {
			if i, ok := vocab[t]; ok && !seen[t] {
				seen[t] = true
				counts[i]++
			}
		}
	}

	idf := make([]float64, len(vocab))
	for i, c := range counts {
		idf[i] = math.Log(float64(n+1)/float64(c+1)) + 1
	}
	return idf
}

func vectorize(tokens []string, vocab map[string]int, idf []float64) []float64 {
	vec := make([]float64, len(vocab))
	if len(tokens) == 0 {
		return vec
	}
	for _, t := range tokens {
		if i, ok := vocab[t]; ok {
			vec[i]++
		}
	}
	for i := range vec {
		vec[i] = vec[i] / float64(len(tokens)) * idf[i]
	}
	return vec
}

func cosine(a, b []float64) float64 {
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
