package main

import (
	"embed"
	"os"

	"github.com/chazu/mindscape/pkg/config"
	log "github.com/sirupsen/logrus"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfg, err := config.Load(os.Getenv("MINDSCAPE_CONFIG"))
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}

	app := NewApp(cfg)
	err = wails.Run(&options.App{
		Title:  "Mindscape",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:  app.startup,
		OnShutdown: app.shutdown,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		log.WithError(err).Fatal("running desktop app")
	}
}
