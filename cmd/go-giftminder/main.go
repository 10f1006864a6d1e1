package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/tartampluch/go-giftminder/internal/app"
	"github.com/tartampluch/go-giftminder/internal/calendar"
	"github.com/tartampluch/go-giftminder/internal/config"
	"github.com/tartampluch/go-giftminder/internal/locale"
	"github.com/tartampluch/go-giftminder/internal/notify"
	"github.com/tartampluch/go-giftminder/internal/people"
	"github.com/tartampluch/go-giftminder/internal/scheduler"
	"github.com/tartampluch/go-giftminder/internal/server"
	"github.com/tartampluch/go-giftminder/internal/worker"
	"github.com/zalando/go-keyring"
)

// main delegates to runMain so deferred calls (closing the log file) run
// before os.Exit.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain() int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	configPath := flag.String(config.FlagConfig, "", config.FlagDescConfig)
	once := flag.Bool(config.FlagOnce, false, config.FlagDescOnce)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Logging Initialization
	// -------------------------------------------------------------------------
	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	// -------------------------------------------------------------------------
	// 3. Context & Signal Handling
	// -------------------------------------------------------------------------
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	// -------------------------------------------------------------------------
	// 4. Application Logic
	// -------------------------------------------------------------------------
	if err := run(ctx, *configPath, *once); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run loads the settings, wires dependencies and either performs a single
// cycle or serves until ctx is cancelled.
func run(ctx context.Context, configPath string, once bool) error {
	if configPath == "" {
		dir, err := config.DefaultDir()
		if err != nil {
			return err
		}
		configPath = filepath.Join(dir, config.SettingsFileName)
	}

	settings, err := config.LoadSettings(configPath)
	if err != nil {
		return err
	}

	loc, err := settings.Location()
	if err != nil {
		return err
	}
	if err := worker.ValidateSpec(settings.EvaluateCron); err != nil {
		return err
	}
	if err := worker.ValidateSpec(settings.DeliverCron); err != nil {
		return err
	}

	source, err := people.FromSettings(settings, lookupPassword(settings), people.NewHTTPFetcher())
	if err != nil {
		return err
	}

	catalog, err := locale.Load()
	if err != nil {
		return err
	}
	phraser := catalog.Phraser(settings.Language)

	feed := calendar.NewFeed()
	dispatcher := notify.NewLocalDispatcher()
	manager := notify.NewManager(dispatcher, feed, phraser)
	manager.Push = settings.Reminders.Push
	manager.Mirror = settings.Reminders.Calendar

	srv := server.NewFeedServer(settings.Listen)

	a := &app.App{
		Source: source,
		Scheduler: &scheduler.Scheduler{
			Clock:    scheduler.RealClock{},
			Rand:     scheduler.NewRandomSource(settings.RandomSeed),
			Phraser:  phraser,
			Location: loc,
		},
		Manager:    manager,
		Feed:       feed,
		Dispatcher: dispatcher,
		Publisher:  srv,
		Horizon:    settings.UpcomingDays,
	}

	slog.Info(config.MsgSettingsLoaded,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyFile, configPath,
		config.LogKeyMode, settings.Source.Mode,
		config.LogKeyTimezone, loc.String(),
		config.LogKeyLang, settings.Language,
	)

	if once {
		if err := a.Evaluate(ctx); err != nil {
			return err
		}
		return a.Deliver(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverError := make(chan error, config.ChannelBufferSize)
	go func() {
		// A failed listener brings the worker down too.
		serverError <- srv.Start(ctx)
		cancel()
	}()

	runner := &worker.Runner{
		EvaluateSpec: settings.EvaluateCron,
		DeliverSpec:  settings.DeliverCron,
		Evaluate:     a.Evaluate,
		Deliver:      a.Deliver,
		Location:     loc,
	}
	if err := runner.Run(ctx); err != nil {
		return err
	}
	return <-serverError
}

// lookupPassword reads the CardDAV password from the OS keyring.
func lookupPassword(s *config.Settings) string {
	if s.Source.Mode != config.SourceModeWeb || s.Source.VCardUser == "" {
		return ""
	}
	pass, err := keyring.Get(config.KeyringService, s.Source.VCardUser)
	if err != nil {
		slog.Debug(config.MsgPassFail,
			config.LogKeyUser, s.Source.VCardUser,
			config.LogKeyError, err,
			config.LogKeyComponent, config.CompMain)
		return ""
	}
	return pass
}

// printVersion outputs the build information to stdout.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyBuilt, config.Date),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger: JSON to stdout and to a
// log file in the user cache dir, truncated on every start.
func setupLogging(debugMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	writers = append(writers, os.Stdout)

	if logPath, err := getLogFilePath(); err == nil {
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
