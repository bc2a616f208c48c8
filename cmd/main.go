package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Akashdeep-Patra/hkm/internal/api"
	"github.com/Akashdeep-Patra/hkm/internal/app"
	"github.com/Akashdeep-Patra/hkm/internal/common"
	"github.com/Akashdeep-Patra/hkm/internal/config"
	"github.com/Akashdeep-Patra/hkm/internal/hotkeys"
	"github.com/Akashdeep-Patra/hkm/internal/logger"
	"github.com/Akashdeep-Patra/hkm/internal/manager"
	"github.com/Akashdeep-Patra/hkm/internal/server"
	"github.com/Akashdeep-Patra/hkm/internal/storage"
	"github.com/Akashdeep-Patra/hkm/internal/watcher"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	// hkm mostly waits on the terminal and one HTTP request at a time.
	// Two OS threads are enough; an explicit GOMAXPROCS still wins.
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(min(2, runtime.NumCPU()))
	}
	debug.SetMemoryLimit(50 * 1024 * 1024) // 50 MiB
}

func main() {
	rootCmd := buildRootCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hkm:", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hkm",
		Short: "Manage your hotkeys from the terminal",
		Long: `hkm edits the keyboard shortcuts stored for your account on a
hotkeys server. It shows every binding grouped by section, records new
combinations, warns when a key is used twice, and saves, resets, imports
or exports the whole set.

Running hkm without a subcommand opens the interactive editor.`,
		RunE:              runApp,
		PersistentPreRunE: initLogging,
		PersistentPostRun: func(*cobra.Command, []string) { logger.Close() },
		SilenceUsage:      true,
		SilenceErrors:     true,
		Version:           version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"hkm %s\n  commit:  %s\n  built:   %s\n  go:      %s\n  os/arch: %s/%s\n",
		version, commit, date, runtime.Version(), runtime.GOOS, runtime.GOARCH,
	))

	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "Config file (default ~/.config/hkm/config.yaml)")
	pf.StringP("server", "s", "", "Hotkeys server base URL")
	pf.String("token", "", "API token sent as \"Authorization: Token <token>\"")
	pf.String("cache", "", "Path of the local override cache")
	pf.String("theme", "", "Colour theme: dark or light")
	pf.String("log-file", "", "Log file path")
	pf.String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(buildShowCmd())
	rootCmd.AddCommand(buildConflictsCmd())
	rootCmd.AddCommand(buildExportCmd())
	rootCmd.AddCommand(buildImportCmd())
	rootCmd.AddCommand(buildResetCmd())
	rootCmd.AddCommand(buildServeCmd())
	rootCmd.AddCommand(buildVersionCmd())
	rootCmd.AddCommand(buildCompletionCmd())

	return rootCmd
}

// initLogging loads the configuration once to find the log file.
func initLogging(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	return logger.Init(cfg.Log.File, cfg.Log.Level)
}

// env is what every client-side command needs.
type env struct {
	cfg   *config.Config
	cache *api.CachedService
	mgr   *manager.Manager
}

func newEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	client, err := api.NewClient(api.ClientOptions{
		BaseURL: cfg.Server.URL,
		Token:   cfg.Server.Token,
		Path:    cfg.Server.HotkeysPath,
		Method:  cfg.Server.UpdateMethod,
		Timeout: cfg.Server.Timeout,
	})
	if err != nil {
		return nil, err
	}
	cached := api.NewCachedService(client, cfg.Cache.TTL, cfg.Cache.Path)
	return &env{
		cfg:   cfg,
		cache: cached,
		mgr:   manager.New(hotkeys.DefaultCatalog(), cached),
	}, nil
}

// load fetches the effective set and prints the fallback warning, if any.
func (e *env) load(ctx context.Context, w io.Writer) manager.Loaded {
	loaded := e.mgr.Load(ctx)
	if loaded.Warning != "" {
		fmt.Fprintf(w, "warning: %s\n", loaded.Warning)
	}
	return loaded
}

func runApp(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	model, err := app.New(ctx, e.mgr, e.cfg)
	if err != nil {
		return err
	}
	model = model.WithCacheCheck(e.cache.ChangedOnDisk)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	// Another hkm saving rewrites the cache; reload so both stay in step.
	if e.cfg.Watch {
		watchCh, stop, watchErr := watcher.Watch(e.cache.Path(), e.cfg.WatchDebounce)
		if watchErr != nil {
			slog.Warn("cache watcher disabled", "err", watchErr)
		} else {
			defer stop()
			go func() {
				for range watchCh {
					p.Send(common.CacheChangedMsg{})
				}
			}()
		}
	}

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func buildShowCmd() *cobra.Command {
	var (
		section   string
		pageURL   string
		overrides bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective hotkeys",
		Long: `Print every hotkey with its current key, grouped by section.

Examples:
  hkm show
  hkm show --section annotation
  hkm show --url https://app.example.com/projects/3/data
  hkm show --overrides`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			loaded := e.load(cmd.Context(), cmd.ErrOrStderr())

			if overrides {
				ov := hotkeys.ToOverrides(loaded.Bindings)
				for _, k := range ov.SortedKeys() {
					o := ov[k]
					state := "on"
					if !o.Active {
						state = "off"
					}
					fmt.Fprintf(out, "%-40s %-24s %s\n", k, o.Key, state)
				}
				return nil
			}

			sections := e.mgr.Catalog().Sections()
			want := map[string]bool{}
			switch {
			case section != "":
				if _, ok := e.mgr.Catalog().Section(section); !ok {
					return fmt.Errorf("unknown section %q", section)
				}
				want[section] = true
			case pageURL != "":
				for _, id := range e.mgr.Catalog().SectionsForURL(pageURL) {
					want[id] = true
				}
			}
			printBindings(out, sections, want, loaded)
			return nil
		},
	}

	cmd.Flags().StringVar(&section, "section", "", "Only show this section")
	cmd.Flags().StringVar(&pageURL, "url", "", "Only show the sections relevant to this page URL")
	cmd.Flags().BoolVar(&overrides, "overrides", false, "Print the override map that a save would send")

	return cmd
}

func printBindings(w io.Writer, sections []hotkeys.Section, want map[string]bool, loaded manager.Loaded) {
	translate := loaded.Settings.AutoTranslatePlatforms
	for _, sec := range sections {
		if len(want) > 0 && !want[sec.ID] {
			continue
		}
		fmt.Fprintf(w, "%s\n", sec.Title)
		for _, b := range loaded.Bindings {
			if b.Section != sec.ID {
				continue
			}
			keyText := hotkeys.Display(b.Key, translate, runtime.GOOS)
			if b.Key == "" {
				keyText = "unbound"
			}
			if !b.Active {
				keyText += " (off)"
			}
			fmt.Fprintf(w, "  %-32s %s\n", b.Label, keyText)
		}
		fmt.Fprintln(w)
	}
}

func buildConflictsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "List keys bound to more than one hotkey",
		Long: `List every key combination shared by two or more hotkeys.
Exits with status 1 when any key is shared.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			loaded := e.load(cmd.Context(), cmd.ErrOrStderr())
			dups := hotkeys.Duplicates(loaded.Bindings)
			out := cmd.OutOrStdout()
			if len(dups) == 0 {
				fmt.Fprintln(out, "No shared keys.")
				return nil
			}
			for _, d := range dups {
				names := make([]string, len(d.Bindings))
				for i, b := range d.Bindings {
					names[i] = fmt.Sprintf("%s (%s)", b.Label, b.Section)
				}
				fmt.Fprintf(out, "%-24s %s\n", d.Key, strings.Join(names, ", "))
			}
			return fmt.Errorf("%d shared key(s)", len(dups))
		},
	}
}

func buildExportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export the effective hotkeys",
		Long: `Write every hotkey and the global settings to file, or to stdout
when no file is given. The format follows the file extension unless
--format is set.

Examples:
  hkm export hotkeys.json
  hkm export --format yaml > hotkeys.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			var path string
			if len(args) == 1 {
				path = args[0]
			}

			f := hotkeys.FormatForPath(path)
			if cmd.Flags().Changed("format") {
				if f, err = hotkeys.ParseFormat(format); err != nil {
					return err
				}
			}

			loaded := e.load(cmd.Context(), cmd.ErrOrStderr())
			data, err := e.mgr.Export(loaded.Bindings, loaded.Settings, f)
			if err != nil {
				return err
			}
			if path == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := storage.WriteAtomic(path, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d hotkeys to %s\n", len(loaded.Bindings), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")

	return cmd
}

func buildImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import hotkeys from an export file and save them",
		Long: `Apply the hotkeys in file on top of the current set, save the
result to the server and read it back. Use "-" to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			var data []byte
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			current, err := e.mgr.Fetch(cmd.Context())
			if err != nil {
				return fmt.Errorf("cannot read current hotkeys: %s", api.Message(err))
			}
			res, err := e.mgr.Import(cmd.Context(), data, current.Bindings, current.Settings)
			if err != nil {
				if errors.Is(err, manager.ErrRefetch) {
					return err
				}
				return fmt.Errorf("import failed: %s", api.Message(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d hotkeys", res.Imported)
			if res.Unknown > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), " (%d not recognised)", res.Unknown)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func buildResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset every hotkey to its default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			if !yes && !confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), "Reset all hotkeys to their defaults?") {
				return errors.New("reset cancelled")
			}
			if _, err := e.mgr.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("reset failed: %s", api.Message(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All hotkeys reset to defaults")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// confirm asks a y/N question on w and reads the answer from r.
func confirm(r io.Reader, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s [y/N] ", question)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func buildServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a standalone hotkeys server",
		Long: `Serve the hotkeys API (GET, PATCH and POST on the hotkeys path)
backed by a JSON file, or by memory when no store is set. Useful for
local development and for tests against a real HTTP endpoint.

Examples:
  hkm serve --addr :8080 --store ./hotkeys-store.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			store, err := server.NewStore(cfg.Serve.Store)
			if err != nil {
				return err
			}
			e := server.New(store, server.Options{
				Path:   cfg.Server.HotkeysPath,
				Tokens: cfg.Serve.Tokens,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "hkm serving %s on %s\n", cfg.Server.HotkeysPath, cfg.Serve.Addr)
			return server.Run(ctx, e, cfg.Serve.Addr)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default :8080)")
	cmd.Flags().String("store", "", "JSON file holding the stored hotkeys")

	return cmd
}

// buildVersionCmd creates the `hkm version` subcommand supporting --json.
func buildVersionCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := map[string]string{
				"version": version,
				"commit":  commit,
				"date":    date,
				"go":      runtime.Version(),
				"os":      runtime.GOOS,
				"arch":    runtime.GOARCH,
			}
			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Fprintf(out, "hkm %s\n", version)
			fmt.Fprintf(out, "  commit:  %s\n", commit)
			fmt.Fprintf(out, "  built:   %s\n", date)
			fmt.Fprintf(out, "  go:      %s\n", runtime.Version())
			fmt.Fprintf(out, "  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	return cmd
}

// buildCompletionCmd creates the `hkm completion` subcommand for shell completions.
func buildCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for hkm.

Examples:
  # Bash (add to ~/.bashrc)
  hkm completion bash > /etc/bash_completion.d/hkm

  # Zsh (add to ~/.zshrc before compinit)
  hkm completion zsh > "${fpath[1]}/_hkm"

  # Fish
  hkm completion fish > ~/.config/fish/completions/hkm.fish

  # PowerShell
  hkm completion powershell > hkm.ps1`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}

	return cmd
}
