package engine

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalizeQuestion(t *testing.T) {
	t.Run("bare string options become label/value pairs", func(t *testing.T) {
		var q Question
		raw := `{"question":"Which level?","field":"level","options":["A1","B2","C1"]}`
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		got := NormalizeQuestion(q)
		if len(got.Options) != 3 {
			t.Fatalf("expected 3 options, got %d", len(got.Options))
		}
		for _, o := range got.Options {
			if o.Label != o.Value {
				t.Errorf("expected label == value, got %q / %q", o.Label, o.Value)
			}
		}
		if got.Options[0].Label != "A1" {
			t.Errorf("expected first option A1, got %q", got.Options[0].Label)
		}
	})

	t.Run("partial objects borrow the missing side", func(t *testing.T) {
		q := Question{
			Question: "Which topic?",
			Field:    "topic",
			Options: []Option{
				{Label: "Grammar"},
				{Value: "vocabulary"},
			},
		}

		got := NormalizeQuestion(q)
		if got.Options[0].Value != "Grammar" {
			t.Errorf("expected value borrowed from label, got %q", got.Options[0].Value)
		}
		if got.Options[1].Label != "vocabulary" {
			t.Errorf("expected label borrowed from value, got %q", got.Options[1].Label)
		}
	})

	t.Run("options with neither label nor value are dropped", func(t *testing.T) {
		q := Question{
			Field:   "duration",
			Options: []Option{{Label: "30 min"}, {}, {Value: "1h"}},
		}

		got := NormalizeQuestion(q)
		if len(got.Options) != 2 {
			t.Fatalf("expected empty option dropped, got %d options", len(got.Options))
		}
	})

	t.Run("legacy allow_freetext read as allow_other", func(t *testing.T) {
		var q Question
		raw := `{"question":"q","field":"topic","options":[],"allow_freetext":true}`
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		got := NormalizeQuestion(q)
		if got.AllowOther == nil || !*got.AllowOther {
			t.Error("expected allow_other true from legacy allow_freetext")
		}
		if got.AllowFreetext != nil {
			t.Error("expected allow_freetext cleared after normalization")
		}
	})

	t.Run("explicit allow_other wins over legacy flag", func(t *testing.T) {
		var q Question
		raw := `{"question":"q","field":"topic","options":[],"allow_other":false,"allow_freetext":true}`
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		got := NormalizeQuestion(q)
		if got.AllowOther == nil || *got.AllowOther {
			t.Error("expected explicit allow_other false to survive")
		}
	})

	t.Run("unset flags stay unset", func(t *testing.T) {
		got := NormalizeQuestion(Question{Question: "q", Field: "audience"})
		if got.MultiSelect != nil || got.AllowOther != nil {
			t.Error("expected unset flags to stay nil, not default to false")
		}
	})

	t.Run("multi_select and other_placeholder pass through", func(t *testing.T) {
		yes := true
		q := Question{
			Field:            "topic",
			MultiSelect:      &yes,
			OtherPlaceholder: "Something else...",
		}

		got := NormalizeQuestion(q)
		if got.MultiSelect == nil || !*got.MultiSelect {
			t.Error("expected multi_select passed through")
		}
		if got.OtherPlaceholder != "Something else..." {
			t.Errorf("expected other_placeholder passed through, got %q", got.OtherPlaceholder)
		}
	})

	t.Run("recommended flag survives object options", func(t *testing.T) {
		var q Question
		raw := `{"question":"q","field":"level","options":[{"label":"B1","value":"b1","recommended":true},{"label":"B2","value":"b2"}]}`
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		got := NormalizeQuestion(q)
		if got.Options[0].Recommended == nil || !*got.Options[0].Recommended {
			t.Error("expected recommended true on first option")
		}
		if got.Options[1].Recommended != nil {
			t.Error("expected recommended unset on second option")
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		inputs := []string{
			`{"question":"q","field":"topic","options":["a","b"],"allow_freetext":true}`,
			`{"question":"q","field":"level","options":[{"label":"B1","value":"b1","recommended":true}],"multi_select":true}`,
			`{"question":"q","field":"audience","options":[{"value":"adults"}]}`,
		}
		for _, raw := range inputs {
			var q Question
			if err := json.Unmarshal([]byte(raw), &q); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			once := NormalizeQuestion(q)
			twice := NormalizeQuestion(once)
			if !reflect.DeepEqual(once, twice) {
				t.Errorf("normalize not idempotent for %s:\nonce:  %+v\ntwice: %+v", raw, once, twice)
			}
		}
	})
}

func TestNormalizeQuestions_NilSlice(t *testing.T) {
	got := NormalizeQuestions(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}
