package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"adventure/internal/adventure"
	"adventure/internal/cli/scheme/colours"
	"adventure/internal/config"

	"github.com/sirupsen/logrus"
)

func main() {
	settings := config.Load()
	config.ConfigureLogging(settings.LogLevel)

	app := adventure.NewAdventure(settings)

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		app.Cancel()
		app.StopNarration()
		fmt.Println("\n" + colours.Warning.Sprint("Goodbye!"))
		os.Exit(0)
	}()

	if err := app.Commands().Execute(); err != nil {
		logrus.WithError(err).Debug("command failed")
		colours.Error.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		os.Exit(1)
	}
}

// Configuration management with Viper
func init() {
	config.SetDefaults()
	if err := config.ReadConfigFile(); err != nil {
		colours.Error.Fprintf(os.Stderr, "❌ Error: reading config: %v\n", err)
		os.Exit(1)
	}
}
