package poll

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewQuestion_NormalizesWhitespace(t *testing.T) {
	a := NewQuestion("  What   is\tthe answer? ", []string{" A ", "B\n", "C  C"})
	b := NewQuestion("What is the answer?", []string{"A", "B", "C C"})

	if a == nil || b == nil {
		t.Fatal("expected non-nil questions")
	}
	if !a.Same(b) {
		t.Errorf("formatting-only differences produced distinct identities:\n%s",
			cmp.Diff(a.Options, b.Options))
	}
	if a.Text != "What is the answer?" {
		t.Errorf("text not normalized: %q", a.Text)
	}
}

func TestNewQuestion_IdentityCoversOptions(t *testing.T) {
	base := NewQuestion("Pick one", []string{"A", "B"})
	reordered := NewQuestion("Pick one", []string{"B", "A"})
	extended := NewQuestion("Pick one", []string{"A", "B", "C"})
	otherText := NewQuestion("Pick two", []string{"A", "B"})

	for name, q := range map[string]*Question{
		"reordered options": reordered,
		"extra option":      extended,
		"different text":    otherText,
	} {
		if base.Same(q) {
			t.Errorf("%s should be a different question", name)
		}
	}
}

func TestNewQuestion_RejectsEmpty(t *testing.T) {
	if q := NewQuestion("   ", []string{"A"}); q != nil {
		t.Error("expected nil for blank text")
	}
	if q := NewQuestion("Question?", nil); q != nil {
		t.Error("expected nil for empty option list")
	}
}

func TestQuestion_SameNil(t *testing.T) {
	q := NewQuestion("Q", []string{"A"})
	if q.Same(nil) {
		t.Error("Same(nil) must be false")
	}
}
