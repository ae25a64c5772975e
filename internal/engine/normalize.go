package engine

// NormalizeQuestion reconciles the two question-schema generations models
// have shipped into one canonical shape:
//
//   - string options become {label, value} pairs with label == value
//     (handled during decoding), and partial objects borrow the missing
//     side from the present one; entries with neither are dropped
//   - the legacy allow_freetext flag is read as allow_other when the
//     latter is absent, then cleared
//   - multi_select and other_placeholder pass through untouched; absent
//     stays absent so callers can apply their own default
//
// Idempotent: normalizing an already-normalized question is a no-op.
func NormalizeQuestion(q Question) Question {
	opts := make([]Option, 0, len(q.Options))
	for _, o := range q.Options {
		if o.Label == "" {
			o.Label = o.Value
		}
		if o.Value == "" {
			o.Value = o.Label
		}
		if o.Label == "" {
			continue
		}
		opts = append(opts, o)
	}
	q.Options = opts

	if q.AllowOther == nil && q.AllowFreetext != nil {
		q.AllowOther = q.AllowFreetext
	}
	q.AllowFreetext = nil

	return q
}

// NormalizeQuestions normalizes a question set. A nil slice becomes empty.
func NormalizeQuestions(qs []Question) []Question {
	out := make([]Question, 0, len(qs))
	for _, q := range qs {
		out = append(out, NormalizeQuestion(q))
	}
	return out
}
