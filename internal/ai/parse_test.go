package ai

import (
	"errors"
	"testing"
)

func TestParseSuggestion(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		want          Suggestion
		wantDefaulted []string
		wantErr       bool
	}{
		{
			name:  "clean json",
			input: `{"title":"Nintendo Switch","description":"Handheld console, light wear.","price":180.5,"category":"Video Games & Consoles","condition":"Used"}`,
			want:  Suggestion{Title: "Nintendo Switch", Description: "Handheld console, light wear.", Price: 180.5, Category: "Video Games & Consoles", Condition: "Used"},
		},
		{
			name:  "json embedded in prose",
			input: "Sure! Here is the listing you asked for:\n```json\n{\"title\":\"Blender\",\"description\":\"Kitchen blender.\",\"price\":30,\"category\":\"Home Appliances\",\"condition\":\"New\"}\n```\nLet me know if you need anything else.",
			want:  Suggestion{Title: "Blender", Description: "Kitchen blender.", Price: 30, Category: "Home Appliances", Condition: "New"},
		},
		{
			name:          "string price falls back",
			input:         `{"title":"Headphones","description":"Over-ear.","price":"49.99","category":"Electronics","condition":"Used"}`,
			want:          Suggestion{Title: "Headphones", Description: "Over-ear.", Price: 25, Category: "Electronics", Condition: "Used"},
			wantDefaulted: []string{"price"},
		},
		{
			name:          "negative price falls back",
			input:         `{"title":"Lamp","description":"Desk lamp.","price":-5,"category":"Home Appliances","condition":"Used"}`,
			want:          Suggestion{Title: "Lamp", Description: "Desk lamp.", Price: 25, Category: "Home Appliances", Condition: "Used"},
			wantDefaulted: []string{"price"},
		},
		{
			name:          "missing title and category",
			input:         `{"description":"Mystery thing.","price":10,"condition":"New"}`,
			want:          Suggestion{Title: "Unknown Item", Description: "Mystery thing.", Price: 10, Category: "Fashion", Condition: "New"},
			wantDefaulted: []string{"title", "category"},
		},
		{
			name:          "invalid condition falls back",
			input:         `{"title":"Jacket","description":"Winter jacket.","price":40,"category":"Fashion","condition":"Like New"}`,
			want:          Suggestion{Title: "Jacket", Description: "Winter jacket.", Price: 40, Category: "Fashion", Condition: "Used"},
			wantDefaulted: []string{"condition"},
		},
		{
			name:    "no json at all",
			input:   "I cannot identify this product.",
			wantErr: true,
		},
		{
			name:    "braces but broken json",
			input:   `{"title": "Broken`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSuggestion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrUnparseable) {
					t.Fatalf("expected ErrUnparseable, got %v", err)
				}
				var ue *UnparseableError
				if !errors.As(err, &ue) || ue.Raw == "" {
					t.Fatalf("expected raw output on error, got %#v", err)
				}
				return
			}
			if got.Title != tt.want.Title || got.Description != tt.want.Description ||
				got.Price != tt.want.Price || got.Category != tt.want.Category ||
				got.Condition != tt.want.Condition {
				t.Fatalf("got=%+v want=%+v", *got, tt.want)
			}
			if len(got.Defaulted) != len(tt.wantDefaulted) {
				t.Fatalf("defaulted=%v want=%v", got.Defaulted, tt.wantDefaulted)
			}
			for i := range tt.wantDefaulted {
				if got.Defaulted[i] != tt.wantDefaulted[i] {
					t.Fatalf("defaulted=%v want=%v", got.Defaulted, tt.wantDefaulted)
				}
			}
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"nested braces", `noise {"a":{"b":2}} trailing {"c":3}`, `{"a":{"b":2}}`, true},
		{"brace inside string", `{"a":"}"}`, `{"a":"}"}`, true},
		{"unbalanced", `{"a":1`, "", false},
		{"no object", "plain text", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONObject(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("got=%q ok=%v want=%q ok=%v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
