package main

import (
	"strings"
	"testing"

	"github.com/hazyhaar/regard/target"
)

func TestParseShot(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
		check   func(t *testing.T, kind target.Kind, css string)
	}{
		{
			name: "page",
			args: []string{"-name", "home", "-page"},
			check: func(t *testing.T, kind target.Kind, _ string) {
				if kind != target.KindPage {
					t.Fatalf("kind: got %v, want page", kind)
				}
			},
		},
		{
			name: "element by class",
			args: []string{"-name", "cta", "-element", "-class", "btn-primary"},
			check: func(t *testing.T, kind target.Kind, css string) {
				if kind != target.KindClass {
					t.Fatalf("kind: got %v, want class", kind)
				}
				if css != ".btn-primary" {
					t.Fatalf("css: got %q", css)
				}
			},
		},
		{
			name: "element by selector",
			args: []string{"-name", "nav", "-element", "-selector", "#navbar"},
			check: func(t *testing.T, kind target.Kind, css string) {
				if kind != target.KindSelector {
					t.Fatalf("kind: got %v, want selector", kind)
				}
				if css != "#navbar" {
					t.Fatalf("css: got %q", css)
				}
			},
		},
		{
			name:    "missing name",
			args:    []string{"-page"},
			wantErr: "-name is required",
		},
		{
			name:    "page and element together",
			args:    []string{"-name", "x", "-page", "-element"},
			wantErr: "mutually exclusive",
		},
		{
			name:    "neither page nor element",
			args:    []string{"-name", "x"},
			wantErr: "either -page or -element",
		},
		{
			name:    "element without class or selector",
			args:    []string{"-name", "x", "-element"},
			wantErr: "either -class or -selector for -element",
		},
		{
			name:    "element with both class and selector",
			args:    []string{"-name", "x", "-element", "-class", "a", "-selector", "b"},
			wantErr: "not both",
		},
		{
			name:    "page with selector",
			args:    []string{"-name", "x", "-page", "-selector", "#a"},
			wantErr: "only apply to -element",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := parseShot("test", tt.args)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error: got %q, want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, req.Target.Kind(), req.Target.CSS())
		})
	}
}

func TestParseShot_URLDefaultsEmpty(t *testing.T) {
	req, err := parseShot("test", []string{"-name", "home", "-page"})
	if err != nil {
		t.Fatal(err)
	}
	if req.URL != "" {
		t.Fatalf("url: got %q, want empty (engine applies the configured default)", req.URL)
	}
}
