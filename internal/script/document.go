// Package script reads and writes YAML show scripts and compiles them into
// runnable shows.
package script

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/slidereel/internal/assets"
	"github.com/ivlev/slidereel/internal/element"
)

// Version is the script format version written by this package.
const Version = 1

// Document is the top level of a show script.
type Document struct {
	Version int     `yaml:"version"`
	Title   string  `yaml:"title"`
	Scenes  []Scene `yaml:"scenes"`
}

// Scene is one topical scene and the bumper announcing the next one.
type Scene struct {
	Name    string   `yaml:"name"`
	Target  float64  `yaml:"target,omitempty"`
	Persist []string `yaml:"persist,omitempty"`
	// Bumper is the label shown after the scene; empty means no bumper.
	Bumper string `yaml:"bumper,omitempty"`
	Units  []Unit `yaml:"units"`
}

// Unit mirrors timeline.SlideUnit. Nil pointers take the configured defaults.
type Unit struct {
	Name         string     `yaml:"name,omitempty"`
	Enter        []Enter    `yaml:"enter,omitempty"`
	LagRatio     *float64   `yaml:"lag_ratio,omitempty"`
	EnterRunTime float64    `yaml:"enter_run_time,omitempty"`
	Hold         float64    `yaml:"hold,omitempty"`
	Emphasis     []Emphasis `yaml:"emphasis,omitempty"`
	Exit         Exit       `yaml:"exit,omitempty"`
}

type Enter struct {
	Element Element        `yaml:"element"`
	Effect  string         `yaml:"effect,omitempty"`
	RunTime *float64       `yaml:"run_time,omitempty"`
	Shift   *element.Point `yaml:"shift,omitempty"`
	Scale   float64        `yaml:"scale,omitempty"`
}

type Emphasis struct {
	Target  string         `yaml:"target"`
	Effect  string         `yaml:"effect,omitempty"`
	RunTime *float64       `yaml:"run_time,omitempty"`
	Wait    float64        `yaml:"wait,omitempty"`
	To      *element.Patch `yaml:"to,omitempty"`
}

type Exit struct {
	Mode     string   `yaml:"mode,omitempty"` // clear (default) or fade
	Keep     []string `yaml:"keep,omitempty"`
	Fade     []string `yaml:"fade,omitempty"`
	Effect   string   `yaml:"effect,omitempty"`
	RunTime  *float64 `yaml:"run_time,omitempty"`
	LagRatio float64  `yaml:"lag_ratio,omitempty"`
	Pause    float64  `yaml:"pause,omitempty"`
}

// Element describes one visual element. Which fields apply depends on Kind.
type Element struct {
	ID   string `yaml:"id"`
	Kind string `yaml:"kind"` // text, formula, shape, image, qr, group

	// text, formula (LaTeX source)
	Text   string `yaml:"text,omitempty"`
	Style  string `yaml:"style,omitempty"` // title, body, caption
	Size   int    `yaml:"size,omitempty"`  // font size, or qr pixels
	Bold   bool   `yaml:"bold,omitempty"`
	Italic bool   `yaml:"italic,omitempty"`
	Color  string `yaml:"color,omitempty"`

	// shape
	Shape  string  `yaml:"shape,omitempty"`
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
	Stroke string  `yaml:"stroke,omitempty"`
	Fill   string  `yaml:"fill,omitempty"`

	// image
	Src        string   `yaml:"src,omitempty"`
	Extensions []string `yaml:"extensions,omitempty"`

	// qr
	Content string `yaml:"content,omitempty"`

	// group
	Children []Element `yaml:"children,omitempty"`

	At *element.Point `yaml:"at,omitempty"`
}

// Parse decodes a script. Unknown fields are rejected so typos surface early.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if doc.Version == 0 {
		doc.Version = Version
	}
	if doc.Version > Version {
		return nil, fmt.Errorf("parse script: version %d is newer than supported version %d", doc.Version, Version)
	}
	return &doc, nil
}

// Read loads a script from a YAML file.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Write writes a script to a YAML file.
func Write(doc *Document, path string) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Assets lists the image assets the script refers to, in order of first use.
func (d *Document) Assets() []assets.Ref {
	var out []assets.Ref
	seen := make(map[string]bool)
	var walk func(e Element)
	walk = func(e Element) {
		if e.Kind == "image" {
			ref := assets.Ref{Name: e.Src, Extensions: e.Extensions}
			if ref.Name == "" {
				ref.Name = e.ID
			}
			key := ref.Name + "|" + strings.Join(ref.Extensions, ",")
			if !seen[key] {
				seen[key] = true
				out = append(out, ref)
			}
		}
		for _, c := range e.Children {
			walk(c)
		}
	}
	for _, s := range d.Scenes {
		for _, u := range s.Units {
			for _, e := range u.Enter {
				walk(e.Element)
			}
		}
	}
	return out
}
