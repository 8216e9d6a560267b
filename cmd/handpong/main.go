package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ayusman/handpong/internal/app"
	"github.com/ayusman/handpong/internal/config"
	"github.com/ayusman/handpong/internal/game"
	"github.com/ayusman/handpong/internal/server"
	"github.com/ayusman/handpong/internal/store"
	"github.com/ayusman/handpong/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	noStore := flag.Bool("no-store", false, "disable match history recording")
	flag.Parse()

	fmt.Println("Handpong - webcam gesture pong")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var st *store.Store
	if !*noStore {
		st, err = openStore()
		if err != nil {
			log.Printf("Match history disabled: %v", err)
		} else {
			defer st.Close()
		}
	}

	var rng *rand.Rand
	if cfg.Game.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Game.Seed))
	}
	eng := game.New(game.FromConfig(cfg), rng)

	pipeline := app.New(cfg)
	if err := pipeline.Start(); err != nil {
		log.Printf("Camera unavailable (%v); the AI plays both sides until S restarts capture", err)
	}
	defer pipeline.Stop()

	if cfg.Server.Enabled {
		srv := server.New(server.Config{
			Engine: eng,
			App:    pipeline,
			Store:  st,
		})
		defer srv.Close()
		go func() {
			log.Printf("debug server on %s", cfg.Server.Addr)
			if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
				log.Printf("debug server stopped: %v", err)
			}
		}()
	}

	g, err := ui.NewGame(cfg, eng, pipeline, st)
	if err != nil {
		log.Fatalf("Failed to build UI: %v", err)
	}

	ebiten.SetWindowTitle("Handpong")
	ebiten.SetWindowSize(cfg.Canvas.Width, cfg.Canvas.Height)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatalf("Game loop failed: %v", err)
	}
}

// openStore creates ~/.handpong and opens the match database inside it.
func openStore() (*store.Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	dataDir := filepath.Join(homeDir, ".handpong")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	return store.New(filepath.Join(dataDir, "handpong.db"))
}
