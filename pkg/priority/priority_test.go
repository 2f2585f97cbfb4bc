// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package priority

import (
	"math"
	"testing"
)

func cfg() Config {
	return Config{
		Dirs:                     map[string]float64{"/home/user/Desktop": 160.0},
		DepthMultiplier:          0.9,
		UnderscoreMultiplier:     0.5,
		OnlyUnderscoreMultiplier: 0.1,
		ExtensionWeights:         map[string]float64{},
	}
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestPriorityAtManagedDir(t *testing.T) {
	p, err := Priority("/home/user/Desktop", cfg())
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(p, 160.0) {
		t.Fatalf("got %v, want 160.0", p)
	}
}

func TestPriorityOneLevelDown(t *testing.T) {
	p, err := Priority("/home/user/Desktop/note.md", cfg())
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(p, 144.0) {
		t.Fatalf("got %v, want 144.0", p)
	}
}

func TestPriorityDeepestManagedDirWins(t *testing.T) {
	c := cfg()
	c.Dirs["/home/user/Desktop/Projects"] = 200.0
	p, err := Priority("/home/user/Desktop/Projects/x.md", c)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(p, 200.0*0.9) {
		t.Fatalf("got %v", p)
	}
}

func TestPriorityOnlyUnderscoreComponent(t *testing.T) {
	p, err := Priority("/home/user/Desktop/_/note.md", cfg())
	if err != nil {
		t.Fatal(err)
	}
	want := 160.0 * 0.9 * 0.1 * 0.9
	if !almostEqual(p, want) {
		t.Fatalf("got %v, want %v", p, want)
	}
}

func TestPriorityLeadingUnderscores(t *testing.T) {
	p, err := Priority("/home/user/Desktop/__draft.md", cfg())
	if err != nil {
		t.Fatal(err)
	}
	want := 160.0 * 0.9 * 0.5 * 0.5
	if !almostEqual(p, want) {
		t.Fatalf("got %v, want %v", p, want)
	}
}

func TestPriorityExtensionWeight(t *testing.T) {
	c := cfg()
	c.ExtensionWeights[".md"] = 2.0
	p, err := Priority("/home/user/Desktop/note.md", c)
	if err != nil {
		t.Fatal(err)
	}
	want := 160.0 * 0.9 * 2.0
	if !almostEqual(p, want) {
		t.Fatalf("got %v, want %v", p, want)
	}
}

func TestPriorityNoManagedDir(t *testing.T) {
	_, err := Priority("/etc/hosts", cfg())
	if err == nil {
		t.Fatal("expected ErrNoManagedDir")
	}
	if _, ok := err.(ErrNoManagedDir); !ok {
		t.Fatalf("got %T", err)
	}
}
