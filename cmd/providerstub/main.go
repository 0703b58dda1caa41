// Command providerstub stands in for the translation and static map
// providers during local development.
package main

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tanguyors/bali-pass-home/internal/external"
	"github.com/tanguyors/bali-pass-home/internal/helpers"
)

var logger = helpers.NewLogger("providerstub")

type Server struct {
	glossary *Glossary
}

func (s *Server) PostTranslate(w http.ResponseWriter, r *http.Request) {
	var req external.TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TargetLang == "" {
		helpers.WriteError(w, http.StatusBadRequest, "target_lang is required")
		return
	}

	out := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		out[i] = s.glossary.Translate(text, req.TargetLang)
	}
	helpers.WriteJSON(w, http.StatusOK, external.TranslateResponse{Translations: out})
}

// GetStaticMap answers any static map path with a plain placeholder tile.
func (s *Server) GetStaticMap(w http.ResponseWriter, r *http.Request) {
	img := image.NewRGBA(image.Rect(0, 0, 800, 500))
	fill := color.RGBA{R: 0xd7, G: 0xee, B: 0xf4, A: 0xff}
	for y := 0; y < 500; y++ {
		for x := 0; x < 800; x++ {
			img.Set(x, y, fill)
		}
	}
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		logger.Warn().Err(err).Msg("Failed to encode static map")
	}
}

func main() {
	helpers.ConfigureLogging(getEnv("LOG_LEVEL", "info"))

	server := &Server{glossary: NewGlossary()}
	if path := os.Getenv("GLOSSARY_FILE"); path != "" {
		if err := server.glossary.LoadFile(path); err != nil {
			logger.Fatal().Err(err).Str("path", path).Msg("Failed to load glossary")
		}
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID, middleware.Recoverer, helpers.RequestLoggerWithBody)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	router.Post("/translate", server.PostTranslate)
	router.Get("/static/*", server.GetStaticMap)

	addr := ":" + getEnv("PORT", "8081")
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info().Str("addr", addr).Msg("Provider stub starting")
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
