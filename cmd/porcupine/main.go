package main

import (
	"fmt"
	stlog "log"
	"os"

	"github.com/Akuli/porcupine-sub000/internal/app"
	"github.com/Akuli/porcupine-sub000/internal/config"
	"github.com/Akuli/porcupine-sub000/internal/logger"
)

const version = "0.1.0"

func main() {
	flags := &config.Flags{}
	args := flags.ParseFlags()

	if flags.Version != nil && *flags.Version {
		fmt.Printf("porcupine %s\n", version)
		os.Exit(0)
	}

	var filePath string
	if len(args) > 0 {
		filePath = args[0]
	}

	configPath := ""
	if flags.ConfigFilePath != nil {
		configPath = *flags.ConfigFilePath
	}
	cfg, err := config.LoadConfig(configPath, flags)
	if err != nil {
		stlog.Fatalf("Failed to load configuration: %v", err)
	}

	logWriter, closeLog, err := cfg.Logger.Open()
	if err != nil {
		stlog.Fatalf("Failed to open log output: %v", err)
	}
	defer closeLog()

	logger.Init(cfg.Logger.Level(), logWriter)

	logger.Infof("Starting editor (version %s)", version)
	if filePath != "" {
		logger.Debugf("File path specified: %s", filePath)
	} else {
		logger.Debugf("No file specified, starting empty.")
	}

	editorApp, err := app.NewApp(filePath, cfg)
	if err != nil {
		logger.Errorf("Error initializing application: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := editorApp.Run(); err != nil {
		logger.Errorf("Application exited with error: %v", err)
		os.Exit(1)
	}

	logger.Infof("Editor finished.")
}
