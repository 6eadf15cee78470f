package services

import (
	"math"
	"testing"
)

func TestSimilarity_IdenticalPrompts(t *testing.T) {
	score := Similarity("a neon city at night", "a neon city at night")
	if score != 1.0 {
		t.Errorf("Expected 1.0 for identical prompts, got %f", score)
	}
}

func TestSimilarity_CaseInsensitive(t *testing.T) {
	score := Similarity("Acme Corp Banner", "acme corp banner")
	if score != 1.0 {
		t.Errorf("Expected 1.0 for case-only difference, got %f", score)
	}
}

func TestSimilarity_EmptyPrompts(t *testing.T) {
	if score := Similarity("", ""); score != 0 {
		t.Errorf("Expected 0 for two empty prompts, got %f", score)
	}
	if score := Similarity("something", ""); score != 0 {
		t.Errorf("Expected 0 when one prompt is empty, got %f", score)
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	a := "sunset over mountain lake"
	b := "sunset over a calm ocean"
	if Similarity(a, b) != Similarity(b, a) {
		t.Errorf("Similarity is not symmetric: %f vs %f", Similarity(a, b), Similarity(b, a))
	}
}

func TestSimilarity_KnownOverlap(t *testing.T) {
	// intersection {red, car} = 2, union {red, car, fast, slow} = 4
	score := Similarity("red fast car", "red slow car")
	if math.Abs(score-0.5) > 1e-9 {
		t.Errorf("Expected 0.5, got %f", score)
	}
}

func TestSimilarity_DuplicateTokensCollapse(t *testing.T) {
	// Sets, not bags: repeated words must not inflate the score.
	score := Similarity("dog dog dog", "dog")
	if score != 1.0 {
		t.Errorf("Expected 1.0 for duplicate-token prompts, got %f", score)
	}
}

func TestSimilarity_NoOverlap(t *testing.T) {
	if score := Similarity("alpha beta", "gamma delta"); score != 0 {
		t.Errorf("Expected 0 for disjoint prompts, got %f", score)
	}
}
