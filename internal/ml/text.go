package ml

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// MaxTextFeatures limita el segmento de texto del vector de features.
const MaxTextFeatures = 100

// stop-words en inglés (las descripciones de los tours están en inglés).
var englishStopWords = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`a about above after again against all am an and any are as at be because
been before being below between both but by can did do does doing down during each few for from further had has
have having he her here hers herself him himself his how i if in into is it its itself just me more most my myself
no nor not now of off on once only or other our ours ourselves out over own same she should so some such than that
the their theirs them themselves then there these they this those through to too under until up very was we were
what when where which while who whom why will with you your yours yourself yourselves`) {
		englishStopWords[w] = true
	}
}

// TextVectorizer es un TF-IDF chico (unigrams + bigrams, top-N términos).
// El estado fitted es serializable para poder cachearlo junto al resto del
// feature space.
type TextVectorizer struct {
	Vocab []string  `json:"vocab"`
	IDF   []float64 `json:"idf"`

	index map[string]int
}

// tokenize pasa a minúsculas y corta en cualquier cosa que no sea letra o
// dígito; tokens de 1 carácter y stop-words quedan fuera.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var tokens []string
	for _, f := range fields {
		if len(f) < 2 || englishStopWords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// terms genera unigrams y bigrams sobre los tokens ya filtrados.
func terms(text string) []string {
	tokens := tokenize(text)
	out := make([]string, 0, len(tokens)*2)
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

// Fit arma el vocabulario (términos más frecuentes del corpus) y el IDF.
func (v *TextVectorizer) Fit(docs []string) {
	termCounts := make(map[string]int)
	docCounts := make(map[string]int)

	n := 0
	for _, doc := range docs {
		if doc == "" {
			continue
		}
		n++
		seen := make(map[string]bool)
		for _, t := range terms(doc) {
			termCounts[t]++
			if !seen[t] {
				docCounts[t]++
				seen[t] = true
			}
		}
	}

	all := make([]string, 0, len(termCounts))
	for t := range termCounts {
		all = append(all, t)
	}
	// más frecuentes primero; empates en orden alfabético para que el
	// vocabulario sea determinista
	sort.Slice(all, func(i, j int) bool {
		if termCounts[all[i]] != termCounts[all[j]] {
			return termCounts[all[i]] > termCounts[all[j]]
		}
		return all[i] < all[j]
	})
	if len(all) > MaxTextFeatures {
		all = all[:MaxTextFeatures]
	}
	sort.Strings(all)

	v.Vocab = all
	v.IDF = make([]float64, len(all))
	v.index = make(map[string]int, len(all))
	for i, t := range all {
		v.index[t] = i
		// idf suavizado: ln((1+n)/(1+df)) + 1
		v.IDF[i] = math.Log(float64(1+n)/float64(1+docCounts[t])) + 1
	}
}

// Transform devuelve el vector TF-IDF normalizado (l2) del texto.
// La longitud es siempre len(Vocab); texto vacío → vector de ceros.
func (v *TextVectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.Vocab))
	if text == "" || len(v.Vocab) == 0 {
		return vec
	}
	v.ensureIndex()

	for _, t := range terms(text) {
		if idx, ok := v.index[t]; ok {
			vec[idx] += v.IDF[idx]
		}
	}

	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// Dim es la longitud del segmento de texto una vez fitted.
func (v *TextVectorizer) Dim() int {
	return len(v.Vocab)
}

// ensureIndex reconstruye el índice cuando el vectorizer viene deserializado
// desde la cache.
func (v *TextVectorizer) ensureIndex() {
	if v.index == nil {
		v.index = make(map[string]int, len(v.Vocab))
		for i, t := range v.Vocab {
			v.index[t] = i
		}
	}
}
