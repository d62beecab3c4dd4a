package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	blueprintanalyzer "github.com/menta2k/blueprint-analyzer"
	"github.com/menta2k/blueprint-analyzer/internal/config"
	"github.com/menta2k/blueprint-analyzer/internal/server"
	"github.com/menta2k/blueprint-analyzer/pkg/client"
	"github.com/menta2k/blueprint-analyzer/pkg/llamacpp"
	"github.com/menta2k/blueprint-analyzer/pkg/ollama"
	"github.com/menta2k/blueprint-analyzer/pkg/store"
)

func main() {
	var in, outDir, model, url, backend, cfgPath string
	var addr, mongoURI, dbName string
	var sendSize int
	var serve bool

	flag.StringVar(&in, "in", "", "input blueprint path (pdf/jpg/png/webp)")
	flag.StringVar(&outDir, "out", "out", "output directory for one-shot mode")
	flag.StringVar(&backend, "backend", "", "backend to use: ollama or llamacpp")
	flag.StringVar(&url, "url", "", "model server URL (defaults: ollama=http://localhost:11434, llamacpp=http://localhost:8080)")
	flag.StringVar(&model, "model", "", "vision model name")
	flag.IntVar(&sendSize, "sendsize", 0, "max long side sent to the model (px), 0=config default")
	flag.StringVar(&cfgPath, "config", "", "config file path (JSON)")
	flag.BoolVar(&serve, "serve", false, "run the HTTP API instead of one-shot mode")
	flag.StringVar(&addr, "addr", "", "HTTP listen address for -serve")
	flag.StringVar(&mongoURI, "mongo", "", "MongoDB URI for persistence (optional)")
	flag.StringVar(&dbName, "db", "", "MongoDB database name")
	flag.Parse()

	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.LoadFromFile(cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	// Flags override config
	if backend != "" {
		cfg.Backend.Kind = backend
	}
	if url != "" {
		cfg.Backend.URL = url
	}
	if model != "" {
		cfg.Backend.Model = model
	}
	if sendSize > 0 {
		cfg.Backend.SendSize = sendSize
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if mongoURI != "" {
		cfg.Storage.MongoURI = mongoURI
	}
	if dbName != "" {
		cfg.Storage.Database = dbName
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Create appropriate client based on backend
	var visionClient client.VisionClient
	var err error

	switch cfg.Backend.Kind {
	case "ollama":
		visionClient, err = ollama.NewClient(cfg.Backend.URL)
		if err != nil {
			log.Fatalf("Failed to create Ollama client: %v", err)
		}
	case "llamacpp":
		visionClient, err = llamacpp.NewClient(cfg.Backend.URL)
		if err != nil {
			log.Fatalf("Failed to create llama.cpp client: %v", err)
		}
	default:
		log.Fatalf("Unknown backend: %s (use 'ollama' or 'llamacpp')", cfg.Backend.Kind)
	}

	// Pick the store: Mongo when configured, in-memory otherwise
	var st store.Store
	if cfg.Storage.MongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		ms, err := store.NewMongo(ctx, cfg.Storage.MongoURI, cfg.Storage.Database)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer ms.Close(context.Background())
		st = ms
	} else {
		st = store.NewMemory()
	}

	ba := blueprintanalyzer.NewWithConfig(visionClient, cfg, st)

	if serve {
		log.Printf("listening on %s (backend=%s model=%s)", cfg.Server.Addr, cfg.Backend.Kind, cfg.Backend.Model)
		srv := server.New(ba.Pipeline(), st, cfg.Server.CORSOrigins)
		log.Fatal(srv.ListenAndServe(cfg.Server.Addr))
	}

	if in == "" {
		log.Fatalf("usage: %s -in blueprint.pdf [-backend ollama|llamacpp] [-url server_url] [-model name] [-out outdir] | -serve [-addr :8000]", filepath.Base(os.Args[0]))
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatal(err)
	}

	env, err := ba.AnalyzeFile(context.Background(), in)
	if err != nil {
		log.Fatal(err)
	}

	detected, estimated := env.Analysis.CountByType()
	log.Printf("scale=%q (%s) dimensions=%d detected=%d estimated=%d",
		env.Analysis.Scale, env.Analysis.ScaleConfidence, len(env.Analysis.Dimensions), detected, estimated)
	for _, dim := range env.Analysis.Dimensions {
		log.Printf("  %s: %s [%s, %s]", dim.Label, dim.Value, dim.Type, dim.Confidence)
	}

	// Write the analysis record and both images
	js, _ := json.MarshalIndent(env.Analysis, "", "  ")
	if err := os.WriteFile(filepath.Join(outDir, "analysis.json"), js, 0o644); err != nil {
		log.Fatal(err)
	}
	writePNG(filepath.Join(outDir, "original.png"), env.OriginalImage)
	writePNG(filepath.Join(outDir, "annotated.png"), env.AnnotatedImage)
}

// writePNG decodes a PNG data URI and writes it to path.
func writePNG(path, uri string) {
	b64 := strings.TrimPrefix(uri, "data:image/png;base64,")
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		log.Printf("failed to decode %s: %v", path, err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("failed to write %s: %v", path, err)
	} else {
		log.Printf("wrote %s", path)
	}
}
