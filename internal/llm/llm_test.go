package llm

import (
	"encoding/json"
	"strings"
	"testing"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    sample
		wantErr bool
	}{
		{
			name:    "plain",
			content: `{"name":"a","count":2}`,
			want:    sample{Name: "a", Count: 2},
		},
		{
			name:    "fenced",
			content: "```json\n{\"name\":\"b\",\"count\":3}\n```",
			want:    sample{Name: "b", Count: 3},
		},
		{
			name:    "notJSON",
			content: "Sure! Here are your moments",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got sample
			err := DecodeJSON(tt.content, &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("DecodeJSON() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGenerateSchema(t *testing.T) {
	data, err := json.Marshal(GenerateSchema[sample]())
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	schema := string(data)
	for _, want := range []string{`"name"`, `"count"`, `"additionalProperties":false`} {
		if !strings.Contains(schema, want) {
			t.Errorf("schema %s missing %s", schema, want)
		}
	}
}

func TestRequestWantsJSON(t *testing.T) {
	if (Request{}).WantsJSON() {
		t.Error("WantsJSON() = true for request without schema")
	}
	if !(Request{Schema: GenerateSchema[sample]()}).WantsJSON() {
		t.Error("WantsJSON() = false for request with schema")
	}
}
