package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"

	api "github.com/enjoys-in/airsend-webmail/cmd/server"
	"github.com/enjoys-in/airsend-webmail/cmd/wireframe"
)

var (
	cpuProfileFlag   = flag.Bool("profile-cpu", false, "Enable CPU profiling.")
	memProfileFlag   = flag.Bool("profile-mem", false, "Enable Memory profiling.")
	blockProfileFlag = flag.Bool("profile-lock", false, "Enable lock profiling.")
	profilePathFlag  = flag.String("profile-path", "", "Path where to write profile data.")
)

func run() error {
	app := wireframe.InitWireframe()
	defer app.DB.Close()

	if level, err := logrus.ParseLevel(app.Config.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logrus.Info("🧩 Services started. Press Ctrl+C to stop.")
	return api.RunHttpApi(ctx, app)
}

// main starts the HTTP API and shuts it down gracefully on Ctrl+C or
// SIGTERM.
func main() {
	flag.Parse()

	switch {
	case *cpuProfileFlag:
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*profilePathFlag), profile.NoShutdownHook).Stop()
	case *memProfileFlag:
		defer profile.Start(profile.MemProfile, profile.MemProfileAllocs, profile.ProfilePath(*profilePathFlag), profile.NoShutdownHook).Stop()
	case *blockProfileFlag:
		defer profile.Start(profile.BlockProfile, profile.ProfilePath(*profilePathFlag), profile.NoShutdownHook).Stop()
	}

	if err := run(); err != nil {
		logrus.WithError(err).Error("❌ HTTP server failed")
		return
	}
	logrus.Info("🛑 Shut down gracefully")
}
