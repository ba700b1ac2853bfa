// Package lexical implements the TF-IDF index the chatbot uses to find the
// FAQ question closest to a user message.
//
// Weights follow the smoothed scheme
//
//	w(t, d) = tf(t, d) * (ln((1+N) / (1+df(t))) + 1)
//
// and every document vector is L2-normalized, so cosine similarity reduces
// to a dot product. An Index is immutable once built and safe for concurrent
// use.
package lexical

import (
	"errors"
	"math"
	"sort"

	"github.com/Skufu/healthdesk/internal/apperr"
	"github.com/Skufu/healthdesk/internal/faq"
)

var ErrEmptyCorpus = errors.New("faq corpus is empty")

// Match is the best-scoring corpus entry for a query. Index is -1 when
// nothing could be matched.
type Match struct {
	Index int
	Score float64
}

type Index struct {
	entries []faq.Entry
	vocab   map[string]int
	idf     []float64
	docs    []vector
}

// vector is a sparse vector sorted by term.
type vector []component

type component struct {
	term  int
	value float64
}

// Build indexes the questions of corpus. It fails with a build error when
// the corpus is empty or holds an entry without question or answer.
func Build(corpus []faq.Entry) (*Index, error) {
	if len(corpus) == 0 {
		return nil, apperr.Build("cannot index faq corpus", ErrEmptyCorpus)
	}
	if err := faq.Validate(corpus); err != nil {
		return nil, apperr.Build("cannot index faq corpus", err)
	}

	entries := make([]faq.Entry, len(corpus))
	copy(entries, corpus)

	tokenized := make([][]string, len(entries))
	df := make(map[string]int)
	for i, e := range entries {
		tokenized[i] = Tokenize(e.Question)
		seen := make(map[string]struct{}, len(tokenized[i]))
		for _, tok := range tokenized[i] {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(entries))
	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	ix := &Index{
		entries: entries,
		vocab:   vocab,
		idf:     idf,
		docs:    make([]vector, len(entries)),
	}
	for i, toks := range tokenized {
		ix.docs[i] = ix.vectorize(toks)
	}
	return ix, nil
}

// Query returns the entry whose question is most similar to text. Terms
// that did not occur in the corpus are ignored. Equal scores resolve to the
// lowest entry index.
func (ix *Index) Query(text string) Match {
	if ix == nil || len(ix.docs) == 0 {
		return Match{Index: -1}
	}

	q := ix.vectorize(Tokenize(text))
	best := Match{Index: 0, Score: clamp(dot(q, ix.docs[0]))}
	for i := 1; i < len(ix.docs); i++ {
		if s := clamp(dot(q, ix.docs[i])); s > best.Score {
			best = Match{Index: i, Score: s}
		}
	}
	return best
}

func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}

// Entry returns the i-th corpus entry, or the zero Entry when i is out of
// range or the index is nil.
func (ix *Index) Entry(i int) faq.Entry {
	if ix == nil || i < 0 || i >= len(ix.entries) {
		return faq.Entry{}
	}
	return ix.entries[i]
}

func (ix *Index) VocabularySize() int {
	if ix == nil {
		return 0
	}
	return len(ix.vocab)
}

// vectorize maps tokens to a normalized TF-IDF vector in the build-time
// term space.
func (ix *Index) vectorize(tokens []string) vector {
	counts := make(map[int]int, len(tokens))
	for _, tok := range tokens {
		if term, ok := ix.vocab[tok]; ok {
			counts[term]++
		}
	}

	v := make(vector, 0, len(counts))
	for term, tf := range counts {
		v = append(v, component{term: term, value: float64(tf) * ix.idf[term]})
	}
	sort.Slice(v, func(i, j int) bool { return v[i].term < v[j].term })

	var norm float64
	for _, c := range v {
		norm += c.value * c.value
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i].value /= norm
	}
	return v
}

func dot(a, b vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].term < b[j].term:
			i++
		case a[i].term > b[j].term:
			j++
		default:
			sum += a[i].value * b[j].value
			i++
			j++
		}
	}
	return sum
}

func clamp(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
