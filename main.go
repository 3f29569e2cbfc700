package main

import (
	"embed"
	"log"

	"classtop/internal/app"
	"classtop/internal/config"
	"classtop/internal/infrastructure/logging"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
)

//go:embed all:frontend/dist
var assets embed.FS

//go:embed build/appicon.png
var icon []byte

// wailsLogLevel maps the configured level onto the Wails logger levels
func wailsLogLevel(level logging.Level) logger.LogLevel {
	switch level {
	case logging.LevelDebug:
		return logger.DEBUG
	case logging.LevelInfo:
		return logger.INFO
	case logging.LevelWarn:
		return logger.WARNING
	default:
		return logger.ERROR
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logging.NewLeveledLogger(cfg.Level())

	application, err := app.NewApp(cfg, appLogger, app.WithTrayIcon(icon))
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	err = wails.Run(&options.App{
		Title:             "ClassTop",
		Width:             1152,
		Height:            int(cfg.Topbar.DefaultHeight),
		MinWidth:          200,
		MinHeight:         24,
		DisableResize:     false,
		Fullscreen:        false,
		Frameless:         true,
		StartHidden:       cfg.Topbar.StartHidden,
		HideWindowOnClose: false,
		AlwaysOnTop:       true,
		BackgroundColour:  &options.RGBA{R: 0, G: 0, B: 0, A: 0},
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Menu:             nil,
		Logger:           logging.NewWailsLoggerAdapter(appLogger),
		LogLevel:         wailsLogLevel(cfg.Level()),
		OnStartup:        application.Startup,
		OnDomReady:       application.DomReady,
		OnBeforeClose:    application.BeforeClose,
		OnShutdown:       application.Shutdown,
		WindowStartState: options.Normal,
		Bind: []interface{}{
			application,
		},
		// Windows platform specific options
		Windows: &windows.Options{
			WebviewIsTransparent: true,
			WindowIsTranslucent:  true,
			DisableWindowIcon:    true,
			ZoomFactor:           1.0,
			BackdropType:         windows.Mica,
		},
		// Linux platform specific options
		Linux: &linux.Options{
			Icon:                icon,
			WindowIsTranslucent: true,
			ProgramName:         "classtop",
		},
		// Mac platform specific options
		Mac: &mac.Options{
			TitleBar:             mac.TitleBarHiddenInset(),
			Appearance:           mac.NSAppearanceNameDarkAqua,
			WebviewIsTransparent: true,
			WindowIsTranslucent:  true,
			About: &mac.AboutInfo{
				Title:   "ClassTop",
				Message: "Class schedule topbar",
				Icon:    icon,
			},
		},
	})

	if err != nil {
		log.Fatal(err)
	}
}
