/*
This is an example application that drives a full XR session round trip
through the webxr facade, against either the simulated or the desktop
device backend.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/immerse/testbed"
	"github.com/spaghettifunk/immerse/webxr/config"
	"github.com/spaghettifunk/immerse/webxr/core"
)

func main() {
	cfg := config.Default()
	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
		loaded, err := config.Load(configPath)
		if err != nil {
			core.LogFatal("failed to load config %s: %s", configPath, err)
		}
		cfg = loaded
	}

	app := testbed.New(cfg, configPath)

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		<-sigCh
		app.Quit()
	}()

	if err := app.Run(); err != nil {
		core.LogFatal("%s", err)
	}
}
