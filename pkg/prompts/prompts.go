package prompts

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

//go:embed prompts.yaml
var defaultPrompts []byte

type Prompts struct {
	System     SystemPrompts     `yaml:"system"`
	Viral      ViralPrompts      `yaml:"viral"`
	Storyboard StoryboardPrompts `yaml:"storyboard"`
	Image      ImagePrompts      `yaml:"image"`
}

type SystemPrompts struct {
	Viral      string `yaml:"viral"`
	Storyboard string `yaml:"storyboard"`
}

type ViralPrompts struct {
	Analyze string `yaml:"analyze"`
}

type StoryboardPrompts struct {
	Generate string `yaml:"generate"`
}

type ImagePrompts struct {
	Panel string `yaml:"panel"`
}

type ViralParams struct {
	Transcript string
}

type StoryboardParams struct {
	Hook         string
	Summary      string
	Excerpt      string
	ViralType    string
	StartTime    string
	EndTime      string
	DefaultStyle string
}

type PanelParams struct {
	Style              string
	Composition        string
	Scene              string
	Characters         string
	Action             string
	VisualStyle        string
	CharacterReference string
	Caption            string
	PanelNumber        int
	TotalPanels        int
}

// Load reads prompts.yaml from the working directory, falling back to the
// built-in prompts when the file does not exist.
func Load() (*Prompts, error) {
	p, err := LoadFrom(defaultPromptsPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default()
	}
	return p, err
}

func LoadFrom(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}
	return parse(data)
}

func Default() (*Prompts, error) {
	return parse(defaultPrompts)
}

func parse(data []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}
	return &p, nil
}

func (p *Prompts) RenderViral(params ViralParams) (string, error) {
	return render(p.Viral.Analyze, params)
}

func (p *Prompts) RenderStoryboard(params StoryboardParams) (string, error) {
	return render(p.Storyboard.Generate, params)
}

func (p *Prompts) RenderPanel(params PanelParams) (string, error) {
	return render(p.Image.Panel, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
