package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/zhaobenny/vnstat-notify/cli/internal/config"
	"github.com/zhaobenny/vnstat-notify/cli/internal/notifier"
	"github.com/zhaobenny/vnstat-notify/cli/internal/telegram"
	applog "github.com/zhaobenny/vnstat-notify/internal/log"
	"github.com/zhaobenny/vnstat-notify/internal/model"
	"github.com/zhaobenny/vnstat-notify/internal/recordfile"
	"github.com/zhaobenny/vnstat-notify/internal/remote"
	"github.com/zhaobenny/vnstat-notify/internal/status"
	"github.com/zhaobenny/vnstat-notify/internal/vnstat"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type cliOptions struct {
	notifier.Options
	configPath string
	date       string
	debug      bool
	showHelp   bool
	showVer    bool
}

func parseFlags(args []string, stderr io.Writer) (*cliOptions, *flag.FlagSet, error) {
	fs := flag.NewFlagSet("vnstat-notify", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &cliOptions{}
	fs.BoolVar(&opts.SaveOnly, "save-to-file", false, "Only save the local stats to a file")
	fs.BoolVar(&opts.SaveOnly, "f", false, "Only save the local stats to a file")
	fs.BoolVar(&opts.NoCollect, "no-collect", false, "Send only the local stats")
	fs.BoolVar(&opts.NoCollect, "n", false, "Send only the local stats")
	fs.BoolVar(&opts.Print, "print", false, "Print a table instead of sending")
	fs.BoolVar(&opts.Print, "p", false, "Print a table instead of sending")
	fs.BoolVar(&opts.JSON, "json", false, "Print JSON instead of sending")
	fs.BoolVar(&opts.Compact, "compact", false, "Force compact table output")
	fs.StringVar(&opts.date, "date", "", "Report this day instead of yesterday (YYYY-MM-DD)")
	fs.StringVar(&opts.configPath, "config", "", "Config file (default ~/.vnstat-notify.yaml)")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&opts.showHelp, "help", false, "Show help")
	fs.BoolVar(&opts.showHelp, "h", false, "Show help")
	fs.BoolVar(&opts.showVer, "version", false, "Show version")
	fs.BoolVar(&opts.showVer, "v", false, "Show version")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `vnstat-notify - Sends vnstat traffic usage to Telegram

Usage: vnstat-notify [command] [options]

Commands:
  (none)    Collect, format and send the daily report
  config    Configure telegram settings

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(stderr, `
Examples:
  vnstat-notify                  Send local and remote stats
  vnstat-notify -n               Send only the local stats
  vnstat-notify -f               Save local stats for a peer to collect
  vnstat-notify --print --date 2024-09-01
  vnstat-notify config --bot-token <token> --chat-id <id>
`)
	}

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}

	if opts.date != "" {
		d, err := model.ParseDate(opts.date)
		if err != nil {
			return nil, fs, fmt.Errorf("invalid --date %q: use YYYY-MM-DD", opts.date)
		}
		opts.Target = d
	}

	return opts, fs, nil
}

// modeFor returns which settings a run with opts needs.
func modeFor(opts notifier.Options) config.Mode {
	if opts.SaveOnly {
		return 0
	}
	var mode config.Mode
	if !opts.Print && !opts.JSON {
		mode |= config.ModeSend
	}
	if !opts.NoCollect {
		mode |= config.ModeCollect
	}
	return mode
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "config" {
		return runConfig(args[1:], stdout, stderr)
	}

	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if opts.showVer {
		fmt.Fprintf(stdout, "vnstat-notify version %s\n", version)
		return 0
	}
	if opts.showHelp {
		fs.Usage()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	mode := modeFor(opts.Options)
	if err := cfg.Validate(mode); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logCfg := applog.DefaultConfig()
	logCfg.Console = stderr
	logCfg.LogFile = cfg.LogPath()
	if opts.debug {
		logCfg.Level = slog.LevelDebug
	}
	logger, err := applog.New(logCfg)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: file logging disabled: %v\n", err)
		logCfg.LogFile = ""
		if logger, err = applog.New(logCfg); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgLogger := logger.WithComponent(applog.ComponentConfig)
	cfgLogger.DebugContext(ctx, "Configuration loaded",
		applog.FieldSystem, cfg.LocalName,
		applog.FieldInterface, cfg.Interface,
		applog.FieldHost, cfg.Remote.Host,
		applog.FieldPath, cfg.LogPath())

	n, err := newNotifier(cfg, mode, logger, stdout)
	if err != nil {
		cfgLogger.ErrorContext(ctx, "Invalid configuration", applog.FieldError, err)
		return 1
	}

	if err := n.Run(ctx, opts.Options); err != nil {
		logger.ErrorContext(ctx, "Run failed", applog.FieldError, err)
		return 1
	}
	return 0
}

// newNotifier wires the collaborators the selected mode needs.
func newNotifier(cfg *config.Config, mode config.Mode, logger *applog.Logger, stdout io.Writer) (*notifier.Notifier, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	n := &notifier.Notifier{
		Local: &vnstat.Collector{
			Status:       status.New(cfg.ServiceUnit, cfg.ServiceProcess, logger),
			Command:      cfg.VnstatCommand,
			MonthCommand: cfg.VnstatMonthCommand,
			Interface:    cfg.Interface,
			Policy:       policy,
			Logger:       logger,
		},
		LocalName: cfg.LocalName,
		Save:      recordfile.Save,
		SavePath:  cfg.LocalFile,
		Out:       stdout,
		Logger:    logger,
	}

	if mode&config.ModeCollect != 0 {
		n.Remote = remote.NewFetcher(remote.Config{
			SystemName:      cfg.RemoteName,
			Host:            cfg.Remote.Host,
			Port:            cfg.Remote.Port,
			User:            cfg.Remote.User,
			KeyPath:         cfg.Remote.KeyPath,
			KnownHostsPath:  cfg.Remote.KnownHosts,
			InsecureHostKey: cfg.Remote.InsecureHostKey,
			RemotePath:      cfg.Remote.JSONPath,
			LocalPath:       cfg.LocalFile,
			Interface:       cfg.Interface,
			Policy:          policy,
		}, logger)
	}
	if mode&config.ModeSend != 0 {
		n.Sender = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.APIURL, logger)
	}

	return n, nil
}

func runConfig(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		botToken   string
		chatID     string
		configPath string
		show       bool
	)
	fs.StringVar(&botToken, "bot-token", "", "Telegram bot token")
	fs.StringVar(&chatID, "chat-id", "", "Telegram chat ID")
	fs.StringVar(&configPath, "config", "", "Config file (default ~/.vnstat-notify.yaml)")
	fs.BoolVar(&show, "show", false, "Show current configuration")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: vnstat-notify config [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(stderr, `
Examples:
  vnstat-notify config --bot-token 123456:ABC --chat-id -1001234567890
  vnstat-notify config --show
`)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if show {
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading config: %v\n", err)
			return 1
		}
		printConfig(stdout, cfg)
		return 0
	}

	if botToken == "" && chatID == "" {
		fs.Usage()
		return 0
	}

	// File values only, so environment overrides are not persisted.
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	if botToken != "" {
		cfg.Telegram.BotToken = botToken
	}
	if chatID != "" {
		cfg.Telegram.ChatID = chatID
	}

	if err := config.Save(cfg, configPath); err != nil {
		fmt.Fprintf(stderr, "Error saving config: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "Configuration saved.")
	return 0
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "Local: %s (interface %s)\n", cfg.LocalName, cfg.Interface)
	if cfg.Telegram.BotToken == "" {
		fmt.Fprintln(w, "Telegram: not configured. Run 'vnstat-notify config --bot-token <token> --chat-id <id>' to configure.")
	} else {
		fmt.Fprintf(w, "Telegram bot token: %s\n", maskSecret(cfg.Telegram.BotToken))
		fmt.Fprintf(w, "Telegram chat ID: %s\n", cfg.Telegram.ChatID)
	}
	if cfg.Remote.Host == "" {
		fmt.Fprintln(w, "Remote: not configured")
	} else {
		fmt.Fprintf(w, "Remote: %s (%s@%s:%d, %s)\n", cfg.RemoteName, cfg.Remote.User, cfg.Remote.Host, cfg.Remote.Port, cfg.Remote.JSONPath)
	}
	fmt.Fprintf(w, "Record file: %s\n", cfg.LocalFile)
	if p := cfg.LogPath(); p != "" {
		fmt.Fprintf(w, "Log file: %s\n", p)
	}
}

func maskSecret(s string) string {
	if len(s) <= 12 {
		return "****"
	}
	return s[:6] + "..." + s[len(s)-4:]
}
