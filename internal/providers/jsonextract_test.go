package providers

import (
	"testing"
)

func TestParseObject(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr ErrorKind
	}{
		{
			name:    "clean object",
			content: `{"a": 1}`,
			want:    `{"a":1}`,
		},
		{
			name:    "json fence",
			content: "```json\n{\"a\": 1}\n```",
			want:    `{"a":1}`,
		},
		{
			name:    "bare fence",
			content: "```\n{\"a\": 1}\n```",
			want:    `{"a":1}`,
		},
		{
			name:    "leading and trailing prose",
			content: "Here is the result:\n{\"a\": 1}\nHope that helps!",
			want:    `{"a":1}`,
		},
		{
			name:    "fence equals stripped slice",
			content: "Sure!\n```json\n{\"nested\": {\"b\": true}}\n```",
			want:    `{"nested":{"b":true}}`,
		},
		{
			name:    "empty",
			content: "   ",
			wantErr: ErrKindEmpty,
		},
		{
			name:    "no object at all",
			content: "I could not produce JSON, sorry.",
			wantErr: ErrKindMalformedJSON,
		},
		{
			name:    "broken object",
			content: `{"a": `,
			wantErr: ErrKindMalformedJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseObject(tt.content)
			if tt.wantErr != "" {
				ce, ok := AsError(err)
				if !ok || ce.Kind != tt.wantErr {
					t.Fatalf("ParseObject() error = %v, want kind %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseObject() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ParseObject() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestErrorRetryable(t *testing.T) {
	retryable := []ErrorKind{ErrKindTransient, ErrKindTimeout, ErrKindEmpty, ErrKindTruncated, ErrKindMalformedJSON}
	for _, kind := range retryable {
		if !(&Error{Kind: kind}).Retryable() {
			t.Errorf("%s should be retryable", kind)
		}
	}
	terminal := []ErrorKind{ErrKindConfig, ErrKindRateLimit, ErrKindRequest}
	for _, kind := range terminal {
		if (&Error{Kind: kind}).Retryable() {
			t.Errorf("%s should not be retryable", kind)
		}
	}
}

func TestClassifyStatus(t *testing.T) {
	if got := classifyStatus(429, "").Kind; got != ErrKindRateLimit {
		t.Errorf("429 -> %s, want rate_limit", got)
	}
	if got := classifyStatus(503, "").Kind; got != ErrKindTransient {
		t.Errorf("503 -> %s, want transient", got)
	}
	if got := classifyStatus(403, "denied").Kind; got != ErrKindRequest {
		t.Errorf("403 -> %s, want request", got)
	}

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	if msg := classifyStatus(418, string(long)).Message; len(msg) > 250 {
		t.Errorf("error body not truncated: %d chars", len(msg))
	}
}
