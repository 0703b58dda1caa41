package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tanguyors/bali-pass-home/internal/external"
)

func TestPostTranslate(t *testing.T) {
	s := &Server{glossary: NewGlossary()}

	raw, _ := json.Marshal(external.TranslateRequest{
		Texts:      []string{"Surf lesson", "Sunset yoga", ""},
		TargetLang: "fr",
	})
	w := httptest.NewRecorder()
	s.PostTranslate(w, httptest.NewRequest(http.MethodPost, "/translate", bytes.NewReader(raw)))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp external.TranslateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"Cours de surf", "[fr] Sunset yoga", ""}
	for i := range want {
		if resp.Translations[i] != want[i] {
			t.Errorf("translation %d = %q, want %q", i, resp.Translations[i], want[i])
		}
	}
}

func TestPostTranslate_MissingLang(t *testing.T) {
	s := &Server{glossary: NewGlossary()}
	w := httptest.NewRecorder()
	s.PostTranslate(w, httptest.NewRequest(http.MethodPost, "/translate", bytes.NewReader([]byte(`{"texts":["a"]}`))))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGlossary_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.json")
	if err := os.WriteFile(path, []byte(`{"DE": {"Surf lesson": "Surfstunde"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	g := NewGlossary()
	if err := g.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := g.Translate("Surf lesson", "de"); got != "Surfstunde" {
		t.Errorf("got %q", got)
	}
}
