package faq

import (
	"strings"
	"testing"
)

const sampleYAML = `
greeting: "Привет!"
menu:
  "Противопоказания":
    answer: contraindications
  "Диета донора":
    answer: diet_overview
    items:
      "Диета ДО донации":
        answer: diet_before
      "Диета ПОСЛЕ донации":
        answer: diet_after
answers:
  contraindications: "Список противопоказаний"
  diet_overview: "Обзор диет"
  diet_before: "Диета до"
  diet_after: "Диета после"
`

func TestParseTree(t *testing.T) {
	svc, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if svc.Greeting() != "Привет!" {
		t.Errorf("greeting mismatch: %q", svc.Greeting())
	}

	root := svc.Root()
	labels := root.Labels()
	want := []string{"Противопоказания", "Диета донора"}
	if len(labels) != len(want) {
		t.Fatalf("expected %d root entries, got %d", len(want), len(labels))
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("menu order lost: got %v", labels)
			break
		}
	}

	node, ok := root.Find("Противопоказания")
	if !ok {
		t.Fatal("leaf entry missing")
	}
	leaf, ok := node.(Leaf)
	if !ok {
		t.Fatalf("expected Leaf, got %T", node)
	}
	if answer, _ := svc.Answer(leaf.AnswerKey); answer != "Список противопоказаний" {
		t.Errorf("answer mismatch: %q", answer)
	}

	node, _ = root.Find("Диета донора")
	branch, ok := node.(*Branch)
	if !ok {
		t.Fatalf("expected *Branch, got %T", node)
	}
	if branch.SelfAnswer != "diet_overview" {
		t.Errorf("self answer mismatch: %q", branch.SelfAnswer)
	}
	if len(branch.Entries) != 2 {
		t.Errorf("expected 2 nested entries, got %d", len(branch.Entries))
	}
}

func TestResolve(t *testing.T) {
	svc, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	branch, ok := svc.Resolve([]string{"Диета донора"})
	if !ok {
		t.Fatal("valid path did not resolve")
	}
	if _, found := branch.Find("Диета ДО донации"); !found {
		t.Error("nested entry missing after resolve")
	}

	if b, ok := svc.Resolve(nil); !ok || b != svc.Root() {
		t.Error("empty path must resolve to root")
	}

	if _, ok := svc.Resolve([]string{"Нет такого"}); ok {
		t.Error("stale path must not resolve")
	}
	// A leaf is not a navigable branch.
	if _, ok := svc.Resolve([]string{"Противопоказания"}); ok {
		t.Error("leaf path must not resolve to a branch")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown answer key",
			yaml: "menu:\n  \"Вопрос\":\n    answer: missing\nanswers:\n  other: text\n",
		},
		{
			name: "entry without answer or items",
			yaml: "menu:\n  \"Вопрос\": {}\nanswers: {}\n",
		},
		{
			name: "empty menu",
			yaml: "menu: {}\nanswers: {}\n",
		},
		{
			name: "missing menu",
			yaml: "answers: {}\n",
		},
		{
			name: "unknown self answer",
			yaml: "menu:\n  \"Раздел\":\n    answer: missing\n    items:\n      \"Вопрос\":\n        answer: a\nanswers:\n  a: text\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("menu: [1, 2]\n")); err == nil || !strings.Contains(err.Error(), "mapping") {
		t.Errorf("expected mapping error, got %v", err)
	}
}
