package surface

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const pollHTML = `<!DOCTYPE html>
<html><body>
<div class="component-response-header">
  <h1 class="component-response-header__title">What   topic should we
  cover next?</h1>
</div>
<ul>
  <li class="component-response-multiple-choice__option">
    <span class="component-response-multiple-choice__option__value">Concurrency</span>
    <button class="component-response-multiple-choice__option__vote">Vote</button>
  </li>
  <li class="component-response-multiple-choice__option">
    <span class="component-response-multiple-choice__option__value">
      Generics
    </span>
    <button class="component-response-multiple-choice__option__vote">Vote</button>
  </li>
  <li class="component-response-multiple-choice__option">
    <span class="component-response-multiple-choice__option__value">Error <em>handling</em></span>
    <button class="component-response-multiple-choice__option__vote">Vote</button>
  </li>
</ul>
</body></html>`

func TestParseQuestion(t *testing.T) {
	q := ParseQuestion(pollHTML)
	if q == nil {
		t.Fatal("expected a question")
	}
	if q.Text != "What topic should we cover next?" {
		t.Errorf("question text = %q", q.Text)
	}
	want := []string{"Concurrency", "Generics", "Error handling"}
	if diff := cmp.Diff(want, q.Options); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestParseQuestion_NoQuestionOnScreen(t *testing.T) {
	cases := map[string]string{
		"lobby page":   `<html><body><h1>Waiting for the presenter</h1></body></html>`,
		"empty page":   ``,
		"title only":   `<html><body><div class="component-response-header__title">Q?</div></body></html>`,
		"options only": `<html><body><span class="component-response-multiple-choice__option__value">A</span></body></html>`,
	}
	for name, raw := range cases {
		if q := ParseQuestion(raw); q != nil {
			t.Errorf("%s: expected nil, got %+v", name, q)
		}
	}
}

func TestParseQuestion_NormalizesAcrossRenders(t *testing.T) {
	reflowed := `<html><body>
	<h1 class="component-response-header__title">What topic
	should we cover next?</h1>
	<span class="component-response-multiple-choice__option__value">Concurrency</span>
	</body></html>`

	a := ParseQuestion(pollHTML)
	b := ParseQuestion(reflowed)
	if a == nil || b == nil {
		t.Fatal("expected questions from both renders")
	}
	if a.Text != b.Text {
		t.Errorf("reflowed whitespace changed the text: %q vs %q", a.Text, b.Text)
	}
}

func TestRepairCoordinates(t *testing.T) {
	cases := []struct {
		lat, lon         float64
		wantLat, wantLon float64
	}{
		{42.44, -76.5, 42.44, -76.5}, // already correct
		{-76.5, 42.44, 42.44, -76.5}, // swapped in the config
		{0, 0, 0, 0},
		{48.85, 2.35, 48.85, 2.35}, // both positive stays put
	}
	for _, tc := range cases {
		lat, lon := repairCoordinates(tc.lat, tc.lon)
		if lat != tc.wantLat || lon != tc.wantLon {
			t.Errorf("repairCoordinates(%v, %v) = (%v, %v), want (%v, %v)",
				tc.lat, tc.lon, lat, lon, tc.wantLat, tc.wantLon)
		}
	}
}
