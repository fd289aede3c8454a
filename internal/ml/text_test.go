package ml

import (
	"math"
	"testing"
)

func TestTokenizeDropsStopWordsAndShortTokens(t *testing.T) {
	got := tokenize("A walk through the old quarter of Hanoi")
	want := []string{"walk", "old", "quarter", "hanoi"}

	if len(got) != len(want) {
		t.Fatalf("tokens: %v, esperaba %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: %q, esperaba %q", i, got[i], want[i])
		}
	}
}

func TestTermsIncludeBigrams(t *testing.T) {
	ts := terms("street food market")
	found := false
	for _, term := range ts {
		if term == "street food" {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("esperaba el bigram %q en %v", "street food", ts)
	}
}

func TestVocabularyIsCapped(t *testing.T) {
	docs := make([]string, 0, 50)
	// cada doc aporta términos distintos para inflar el vocabulario
	words := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot",
		"golf", "hotel", "india", "juliet", "kilo", "lima", "mike"}
	for i := 0; i < len(words); i++ {
		for j := 0; j < len(words); j++ {
			if i != j {
				docs = append(docs, words[i]+" "+words[j]+" tour")
			}
		}
	}

	var v TextVectorizer
	v.Fit(docs)
	if len(v.Vocab) > MaxTextFeatures {
		t.Fatalf("vocabulario de %d términos, máximo %d", len(v.Vocab), MaxTextFeatures)
	}
	if len(v.IDF) != len(v.Vocab) {
		t.Fatalf("IDF len=%d, Vocab len=%d", len(v.IDF), len(v.Vocab))
	}
}

func TestTransformIsL2Normalized(t *testing.T) {
	var v TextVectorizer
	v.Fit([]string{
		"street food adventure in the market",
		"imperial citadel history walk",
		"boat trip on the river delta",
	})

	vec := v.Transform("street food walk in the market")
	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-9 {
		t.Fatalf("norma l2 = %v, esperaba 1", math.Sqrt(norm))
	}
}

func TestTransformEmptyTextIsZeroVector(t *testing.T) {
	var v TextVectorizer
	v.Fit([]string{"some tour description", "another tour description"})

	vec := v.Transform("")
	if len(vec) != v.Dim() {
		t.Fatalf("len=%d, esperaba %d", len(vec), v.Dim())
	}
	for i, x := range vec {
		if x != 0 {
			t.Fatalf("posición %d no nula: %v", i, x)
		}
	}
}

func TestTransformAfterDeserializationRebuildsIndex(t *testing.T) {
	var fitted TextVectorizer
	fitted.Fit([]string{"street food tour", "history walk tour"})

	// simula el estado que vuelve de la cache: solo los campos exportados
	restored := TextVectorizer{Vocab: fitted.Vocab, IDF: fitted.IDF}

	a := fitted.Transform("street food")
	b := restored.Transform("street food")
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-12 {
			t.Fatalf("posición %d difiere: %v vs %v", i, a[i], b[i])
		}
	}
}
