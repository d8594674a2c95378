package crawler

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultStartURL is crawled when no source file is configured.
const DefaultStartURL = "https://example.com/news"

// Source is one news page and the selectors used to pull items from it.
type Source struct {
	Name         string `yaml:"name"`
	URL          string `yaml:"url"`
	ItemSelector string `yaml:"item_selector"`
	TextSelector string `yaml:"text_selector"`
}

type sourceFile struct {
	Sources []Source `yaml:"sources"`
}

// DefaultSources returns the single built-in news source.
func DefaultSources() []Source {
	return []Source{withDefaults(Source{Name: "news", URL: DefaultStartURL})}
}

// LoadSources reads a YAML source list. An empty path yields DefaultSources.
func LoadSources(path string) ([]Source, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultSources(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	var file sourceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sources %s: %w", path, err)
	}

	out := make([]Source, 0, len(file.Sources))
	for i, src := range file.Sources {
		src.URL = strings.TrimSpace(src.URL)
		if src.URL == "" {
			return nil, fmt.Errorf("source %d has no url", i)
		}
		out = append(out, withDefaults(src))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no sources in %s", path)
	}
	return out, nil
}

func withDefaults(src Source) Source {
	if src.Name == "" {
		src.Name = src.URL
	}
	if src.ItemSelector == "" {
		src.ItemSelector = "article"
	}
	if src.TextSelector == "" {
		src.TextSelector = "p"
	}
	return src
}
