package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(originalWd) }()

	promptsContent := `
system:
  viral: "Viral system prompt"
  storyboard: "Storyboard system prompt"
viral:
  analyze: "Analyze {{.Transcript}}"
`
	if err := os.WriteFile(filepath.Join(tmpDir, "prompts.yaml"), []byte(promptsContent), 0644); err != nil {
		t.Fatal(err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}

	p, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if p.System.Viral != "Viral system prompt" {
		t.Errorf("System.Viral = %q, want %q", p.System.Viral, "Viral system prompt")
	}
	if p.System.Storyboard != "Storyboard system prompt" {
		t.Errorf("System.Storyboard = %q, want %q", p.System.Storyboard, "Storyboard system prompt")
	}
}

func TestLoadFallsBackToDefault(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(originalWd) }()

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}

	p, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.Viral.Analyze == "" || p.Storyboard.Generate == "" || p.Image.Panel == "" {
		t.Error("default prompts are incomplete")
	}
}

func TestLoadFromMissing(t *testing.T) {
	_, err := LoadFrom("/nonexistent/path.yaml")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFromInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("system: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestRenderViral(t *testing.T) {
	p, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	got, err := p.RenderViral(ViralParams{Transcript: "Hello world."})
	if err != nil {
		t.Fatalf("RenderViral() error = %v", err)
	}
	if !strings.Contains(got, "TRANSCRIPT:\nHello world.") {
		t.Errorf("RenderViral() missing transcript:\n%s", got)
	}
}

func TestRenderStoryboard(t *testing.T) {
	p, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	got, err := p.RenderStoryboard(StoryboardParams{
		Hook:      "He quit on live TV",
		Summary:   "A host walks off",
		Excerpt:   "I'm done",
		ViralType: "surprising",
		StartTime: "01:00",
		EndTime:   "01:30",
	})
	if err != nil {
		t.Fatalf("RenderStoryboard() error = %v", err)
	}

	for _, want := range []string{"HOOK: He quit on live TV", `EXCERPT: "I'm done"`, "TIME RANGE: 01:00 - 01:30"} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderStoryboard() missing %q", want)
		}
	}
}

func TestRenderPanel(t *testing.T) {
	p, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	got, err := p.RenderPanel(PanelParams{
		Style:              "noir",
		Composition:        "close-up",
		Scene:              "a rainy street",
		Characters:         "a detective",
		Action:             "lights a match",
		VisualStyle:        "high contrast",
		CharacterReference: "tall detective in a trench coat",
		Caption:            "It was raining",
		PanelNumber:        3,
		TotalPanels:        6,
	})
	if err != nil {
		t.Fatalf("RenderPanel() error = %v", err)
	}

	for _, want := range []string{
		"A single comic book panel in a noir style.",
		"COMPOSITION: close-up",
		"CONSISTENT CHARACTER DESIGN (important - use this reference for all panels):\ntall detective in a trench coat",
		`TEXT CAPTION (overlay at bottom): "It was raining"`,
		"Panel 3 of 6.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderPanel() missing %q", want)
		}
	}
}
