package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Fortress-Command/internal/bridge"
	"github.com/Garsondee/Fortress-Command/internal/config"
	"github.com/Garsondee/Fortress-Command/internal/game"
	"github.com/Garsondee/Fortress-Command/internal/level"
	"github.com/Garsondee/Fortress-Command/internal/llm"
	"github.com/Garsondee/Fortress-Command/internal/logging"
	"github.com/Garsondee/Fortress-Command/internal/view"
)

const title = "Fortress Command"

func main() {
	cfgDir := flag.String("config", ".", "directory holding "+config.FileName)
	lvlName := flag.String("level", "", "starting level (overrides the config)")
	flag.Parse()

	cfg, err := config.Load(*cfgDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if *lvlName != "" {
		cfg.Level = *lvlName
	}
	logger, closeLog, err := logging.Init(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("game exited")
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	w := game.NewWorld(cfg.GameWorld())
	if cfg.Level != "" {
		lvl, err := level.Builtin().Load(cfg.Level)
		if err != nil {
			return err
		}
		if err := w.ApplyLevel(lvl); err != nil {
			return fmt.Errorf("apply level %s: %w", cfg.Level, err)
		}
		logger.Info().Str("level", lvl.Name).Int("blue", len(lvl.Blue)).Int("red", len(lvl.Red)).Msg("level loaded")
	}

	aiSide := cfg.AISide()
	var b *bridge.Bridge
	if cfg.LLMEnabled() {
		settings := cfg.BridgeSettings()
		client, err := llm.NewClient(llm.Options{
			Endpoint: cfg.LLM.Endpoint,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
			Timeout:  cfg.LLM.Timeout,
			System: llm.RulesPrompt(llm.PromptParams{
				Side:            aiSide,
				World:           w.Cfg,
				ReportInterval:  settings.ReportInterval,
				CommandInterval: settings.CommandInterval,
				HistoryRounds:   settings.HistoryRounds,
			}),
			Logger: logger,
		})
		if err != nil {
			return err
		}
		if b, err = bridge.New(w, aiSide, client, settings, bridge.WithLogger(logger)); err != nil {
			return err
		}
		defer b.Close()
		logger.Info().Str("side", aiSide.String()).Str("model", cfg.LLM.Model).Msg("AI commander enabled")
	} else {
		logger.Warn().Msg("no LLM API key configured; the opposing fortress stays idle")
	}

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(1840, 1000)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(view.New(view.Options{
		World:      w,
		PlayerSide: aiSide.Opponent(),
		Bridge:     b,
		Logger:     logger,
		Speed:      cfg.Sim.Speed,
		Title:      title,
	}))
}
