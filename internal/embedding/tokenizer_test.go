package embedding

import "testing"

func TestWordTokenizer(t *testing.T) {
	tok := &WordTokenizer{}
	inputIDs, attentionMask, tokenTypeIDs := tok.Tokenize("git manager refresh", 8)

	if len(inputIDs) != 8 || len(attentionMask) != 8 || len(tokenTypeIDs) != 8 {
		t.Fatalf("wrong lengths: %d %d %d", len(inputIDs), len(attentionMask), len(tokenTypeIDs))
	}
	if inputIDs[0] != 101 {
		t.Errorf("expected [CLS] at 0, got %d", inputIDs[0])
	}
	if inputIDs[4] != 102 {
		t.Errorf("expected [SEP] after 3 words, got %d", inputIDs[4])
	}
	for i := 0; i < 5; i++ {
		if attentionMask[i] != 1 {
			t.Errorf("attention mask should cover position %d", i)
		}
	}
	if attentionMask[5] != 0 {
		t.Error("padding should not be attended")
	}
}

func TestWordTokenizer_Deterministic(t *testing.T) {
	tok := &WordTokenizer{}
	a, _, _ := tok.Tokenize("workflow executor", 16)
	b, _, _ := tok.Tokenize("workflow executor", 16)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("tokenization must be deterministic, differs at %d", i)
		}
	}
}

func TestWordTokenizer_Truncates(t *testing.T) {
	tok := &WordTokenizer{}
	inputIDs, _, _ := tok.Tokenize("a b c d e f g h", 4)
	if len(inputIDs) != 4 {
		t.Fatalf("expected 4 tokens, got %d", len(inputIDs))
	}
}
