package validate

import (
	"errors"
	"testing"
)

func TestInteger(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "simple", input: "42", want: 42},
		{name: "one", input: "1", want: 1},
		{name: "surrounding whitespace", input: "  7 ", want: 7},
		{name: "zero", input: "0", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
		{name: "negative", input: "-3", wantErr: true},
		{name: "plus sign", input: "+3", wantErr: true},
		{name: "decimal", input: "1.5", wantErr: true},
		{name: "letters", input: "abc", wantErr: true},
		{name: "mixed", input: "12a", wantErr: true},
		{name: "unicode digits", input: "١٢", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Integer(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrNotInteger) {
					t.Fatalf("Integer(%q) error = %v, want ErrNotInteger", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Integer(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Integer(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "whole", input: "3", want: "3"},
		{name: "fraction", input: "0.5", want: "0.5"},
		{name: "trailing dot", input: "2.", want: "2."},
		{name: "leading dot", input: ".5", want: ".5"},
		{name: "whitespace trimmed", input: " 1.25 ", want: "1.25"},
		{name: "zero", input: "0", wantErr: true},
		{name: "zero fraction", input: "0.0", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "dot only", input: ".", wantErr: true},
		{name: "two dots", input: "1.2.3", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "comma", input: "1,5", wantErr: true},
		{name: "letters", input: "two", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Amount(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrNotAmount) {
					t.Fatalf("Amount(%q) error = %v, want ErrNotAmount", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Amount(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Amount(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNonEmpty(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "borscht", want: "borscht"},
		{name: "trimmed", input: "  soup  ", want: "soup"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace", input: " \t\n ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NonEmpty(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrEmpty) {
					t.Fatalf("NonEmpty(%q) error = %v, want ErrEmpty", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NonEmpty(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("NonEmpty(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
