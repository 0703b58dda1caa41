package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Glossary holds canned translations keyed by target language and source text.
type Glossary struct {
	mu      sync.RWMutex
	entries map[string]map[string]string
}

func NewGlossary() *Glossary {
	return &Glossary{entries: map[string]map[string]string{
		"fr": {
			"Balinese massage":   "Massage balinais",
			"Free welcome drink": "Boisson de bienvenue offerte",
			"Surf lesson":        "Cours de surf",
		},
		"id": {
			"Balinese massage":   "Pijat Bali",
			"Free welcome drink": "Minuman selamat datang gratis",
			"Surf lesson":        "Les selancar",
		},
	}}
}

// LoadFile merges a JSON file shaped {"fr": {"source": "translation"}}.
func (g *Glossary) LoadFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	var extra map[string]map[string]string
	if err := json.Unmarshal(data, &extra); err != nil {
		return fmt.Errorf("failed to parse glossary: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for lang, pairs := range extra {
		lang = strings.ToLower(lang)
		if g.entries[lang] == nil {
			g.entries[lang] = make(map[string]string)
		}
		for src, dst := range pairs {
			g.entries[lang][src] = dst
		}
	}
	return nil
}

// Translate returns the glossary entry, or the text tagged with the target
// language when there is none.
func (g *Glossary) Translate(text, lang string) string {
	if text == "" {
		return ""
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if dst, ok := g.entries[strings.ToLower(lang)][text]; ok {
		return dst
	}
	return "[" + lang + "] " + text
}
