package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/atinyakov/JobScout/internal/client/app"
	"github.com/atinyakov/JobScout/internal/client/datasync"
	"github.com/atinyakov/JobScout/internal/client/gateway"
	"github.com/atinyakov/JobScout/internal/config"
	"github.com/atinyakov/JobScout/internal/logger"
)

var (
	version   string
	buildDate string
)

// main parses configuration, builds the application and runs the shell.
func main() {
	if len(os.Args) > 1 && os.Args[1] == "-version" {
		fmt.Printf("JobScout Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	options, err := config.ParseClient(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	l := logger.New()
	if err := l.Init(options.LogLevel); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Log.Sync() }()

	hc, err := gateway.NewHTTPClient(options.RequestTimeout.Duration, options.CAFile)
	if err != nil {
		log.Fatal(err)
	}
	gw := gateway.New(options.BaseURL, gateway.WithHTTPClient(hc), gateway.WithLogger(l.Log))

	appOpts := []app.Option{
		app.WithLogger(l.Log),
		app.WithNotifier(consoleNotifier{out: os.Stdout}),
	}
	if !options.StrictOrdering {
		appOpts = append(appOpts, app.WithDataOptions(datasync.WithLastResolvedWins()))
	}
	a := app.New(gw, appOpts...)

	if options.User != "" {
		if err := a.Login(context.Background(), options.User); err != nil {
			fmt.Println("login:", err)
		}
	}

	newShell(a, os.Stdin, os.Stdout).run(context.Background())
}
