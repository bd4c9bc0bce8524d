package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadAppliesRulesInOrder(t *testing.T) {
	t.Parallel()

	path := writeRules(t, `
# product names
deep gram => Deepgram
pull request => PR

gemini flash => Gemini 2.5 Flash
`)

	vocab, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load vocabulary: %v", err)
	}
	if vocab.Len() != 3 {
		t.Fatalf("expected 3 rules, got %d", vocab.Len())
	}

	output, err := vocab.Apply("open a Pull  Request about deep gram and GEMINI flash")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if output != "open a PR about Deepgram and Gemini 2.5 Flash" {
		t.Fatalf("unexpected output: %q", output)
	}
}

func TestApplyRespectsWordBoundaries(t *testing.T) {
	t.Parallel()

	vocab, err := Parse("cat => dog\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	output, _ := vocab.Apply("the cat sat on a concatenated catalog")
	if output != "the dog sat on a concatenated catalog" {
		t.Fatalf("unexpected output: %q", output)
	}
}

func TestApplyMatchesNonASCIIPhraseEdges(t *testing.T) {
	t.Parallel()

	vocab, err := Parse("café => coffee shop\nélan => flair\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	output, _ := vocab.Apply("meet at the Café now, café")
	if output != "meet at the coffee shop now, coffee shop" {
		t.Fatalf("unexpected output: %q", output)
	}

	output, _ = vocab.Apply("cafés and élans stay, élan goes")
	if output != "cafés and élans stay, flair goes" {
		t.Fatalf("expected unicode word boundaries, got %q", output)
	}
}

func TestApplyRetriesOverlappingCandidates(t *testing.T) {
	t.Parallel()

	vocab, err := Parse("ab => X\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	output, _ := vocab.Apply("abab ab")
	if output != "abab X" {
		t.Fatalf("unexpected output: %q", output)
	}
}

func TestApplyRunsEachRuleOnce(t *testing.T) {
	t.Parallel()

	vocab, err := Parse("a => b\nb => c\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	output, _ := vocab.Apply("a")
	if output != "c" {
		t.Fatalf("expected rules to chain in order, got %q", output)
	}

	reversed, err := Parse("b => c\na => b\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	output, _ = reversed.Apply("a")
	if output != "b" {
		t.Fatalf("expected a single pass, got %q", output)
	}
}

func TestApplyTreatsReplacementLiterally(t *testing.T) {
	t.Parallel()

	vocab, err := Parse("dollar sign => $1\nc plus plus => C++\nC++ => cpp\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	output, _ := vocab.Apply("dollar sign and c plus plus")
	if output != "$1 and cpp" {
		t.Fatalf("unexpected output: %q", output)
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	vocab, err := Load(filepath.Join(t.TempDir(), "missing.rules"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if vocab.Len() != 0 {
		t.Fatalf("expected empty vocabulary")
	}

	empty, err := Load("  ")
	if err != nil || empty.Len() != 0 {
		t.Fatalf("expected empty vocabulary for blank path, got %v", err)
	}
}

func TestLoadInvalidFileReportsLine(t *testing.T) {
	t.Parallel()

	path := writeRules(t, "deep gram => Deepgram\nthis line has no arrow\n")

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line number in error: %v", err)
	}
}

func TestParseRejectsEmptyPhrase(t *testing.T) {
	t.Parallel()

	if _, err := Parse(" => nothing\n"); err == nil {
		t.Fatalf("expected empty phrase error")
	}
}

func writeRules(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "vocabulary.rules")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed to write rules file: %v", err)
	}
	return path
}
