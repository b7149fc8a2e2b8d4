package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/miamibc/ubuntu-make/internal/config"
	"github.com/miamibc/ubuntu-make/internal/events"
	"github.com/miamibc/ubuntu-make/internal/framework"
	"github.com/miamibc/ubuntu-make/internal/launcher"
	"github.com/miamibc/ubuntu-make/internal/log"
	"github.com/miamibc/ubuntu-make/internal/mainloop"
	"github.com/miamibc/ubuntu-make/internal/platform"
	"github.com/miamibc/ubuntu-make/internal/storage"
	"github.com/miamibc/ubuntu-make/internal/tui"
	"github.com/miamibc/ubuntu-make/internal/worker"
)

var (
	version   = "1.0.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	exit := mainloop.NewExitController()
	exit.Exit(runCLI(os.Args[1:]))
}

var commands = []string{"install", "remove", "list", "platform", "version", "help"}

func runCLI(cliArgs []string) int {
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Environment error: %v\n", err)
		return 1
	}
	log.Setup(env.LogLevel)

	// Shell completion must answer fast: no platform queries, no database.
	if env.CompletionMode() {
		for _, c := range commands {
			fmt.Println(c)
		}
		return 0
	}

	if len(cliArgs) < 1 {
		printUsage()
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	switch cmd {
	case "install":
		return runInstall(env, args)
	case "remove":
		return runRemove(env, args)
	case "list":
		return runList(env, args)
	case "platform":
		return runPlatform(args)
	case "version", "--version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	info := versionInfo{Version: version, Commit: gitCommit, BuildTime: buildDate}

	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render version JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("umake %s\n", info.Version)
	fmt.Printf("commit: %s\n", info.Commit)
	fmt.Printf("built_at: %s\n", info.BuildTime)
	return 0
}

func runInstall(env config.Env, args []string) int {
	fs := flag.NewFlagSet("install", flag.ContinueOnError)
	noUI := fs.Bool("no-ui", false, "Disable the progress UI")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: umake install [--no-ui] <framework>...")
		return 1
	}

	catalog := framework.BuiltIn()
	var frameworks []framework.Framework
	for _, name := range fs.Args() {
		fw, ok := catalog.Get(name)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown framework: %s\n", name)
			return 1
		}
		frameworks = append(frameworks, fw)
	}

	ctx := context.Background()
	db, err := storage.OpenSQLite(ctx, journalPath(env))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not open install journal: %v\n", err)
		return 1
	}
	defer db.Close()

	installer := framework.NewInstaller(
		platform.Default(),
		launcher.New(),
		config.Default(),
		storage.NewJournal(db),
		framework.HTTPFetcher{},
		installRoot(env),
	)

	loop := mainloop.Default()
	hub := events.NewHub(128)
	executor := worker.NewExecutor(loop, hub, 2)

	// Completion bookkeeping lives on the loop goroutine only.
	remaining := len(frameworks)
	failed := false
	for _, fw := range frameworks {
		fw := fw
		executor.Submit(ctx, fw.Name, func(ctx context.Context, progress func(float64)) error {
			return installer.Install(ctx, fw, progress)
		}, func(err error) {
			if err != nil {
				failed = true
			}
			remaining--
			if remaining == 0 {
				if failed {
					loop.Quit(1)
				} else {
					loop.QuitOK()
				}
			}
		})
	}

	if !*noUI && isatty.IsTerminal(os.Stdout.Fd()) {
		go func() {
			if err := tui.Run(hub, len(frameworks)); err != nil {
				log.Warn("progress UI failed", "error", err)
			}
		}()
	}

	code, err := loop.Run()
	if err != nil {
		log.Error("main loop failed to run", "error", err)
		return mainloop.FaultExitCode
	}
	executor.Wait()
	return code
}

func runRemove(env config.Env, args []string) int {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: umake remove <framework>")
		return 1
	}

	fw, ok := framework.BuiltIn().Get(fs.Arg(0))
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown framework: %s\n", fs.Arg(0))
		return 1
	}

	ctx := context.Background()
	db, err := storage.OpenSQLite(ctx, journalPath(env))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not open install journal: %v\n", err)
		return 1
	}
	defer db.Close()

	installer := framework.NewInstaller(
		platform.Default(),
		launcher.New(),
		config.Default(),
		storage.NewJournal(db),
		framework.HTTPFetcher{},
		installRoot(env),
	)

	if err := installer.Remove(ctx, fw); err != nil {
		fmt.Fprintf(os.Stderr, "Remove failed: %v\n", err)
		return 1
	}
	fmt.Printf("Removed %s\n", fw.Name)
	return 0
}

func runList(env config.Env, args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	installedOnly := fs.Bool("installed", false, "Only list installed frameworks")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *installedOnly {
		ctx := context.Background()
		db, err := storage.OpenSQLite(ctx, journalPath(env))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not open install journal: %v\n", err)
			return 1
		}
		defer db.Close()

		installs, err := storage.NewJournal(db).List(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not list installs: %v\n", err)
			return 1
		}
		if *jsonOut {
			return printJSON(installs)
		}
		for _, in := range installs {
			fmt.Printf("%s\t%s\t%s\n", in.Framework, in.Category, in.InstallPath)
		}
		return 0
	}

	catalog := framework.BuiltIn()
	if *jsonOut {
		type entry struct {
			Name        string `json:"name"`
			Category    string `json:"category"`
			Description string `json:"description"`
		}
		var out []entry
		for _, name := range catalog.Names() {
			fw, _ := catalog.Get(name)
			out = append(out, entry{Name: fw.Name, Category: fw.Category, Description: launcher.StripTags(fw.Description)})
		}
		return printJSON(out)
	}
	for _, name := range catalog.Names() {
		fw, _ := catalog.Get(name)
		fmt.Printf("%s\t%s\t%s\n", fw.Name, fw.Category, launcher.StripTags(fw.Description))
	}
	return 0
}

func runPlatform(args []string) int {
	fs := flag.NewFlagSet("platform", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	q := platform.Default()
	arch, err := q.CurrentArch()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Platform query failed: %v\n", err)
		return 1
	}
	foreign, err := q.ForeignArchs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Platform query failed: %v\n", err)
		return 1
	}
	osVersion, err := q.CurrentVersion()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Platform query failed: %v\n", err)
		return 1
	}

	if *jsonOut {
		return printJSON(map[string]any{
			"architecture":          arch,
			"foreign_architectures": foreign,
			"version":               osVersion,
		})
	}
	fmt.Printf("architecture: %s\n", arch)
	fmt.Printf("foreign architectures: %v\n", foreign)
	fmt.Printf("version: %s\n", osVersion)
	return 0
}

func printJSON(v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render JSON: %v\n", err)
		return 1
	}
	fmt.Println(string(data))
	return 0
}

func journalPath(env config.Env) string {
	return filepath.Join(env.DataDir(), "umake", "umake.db")
}

func installRoot(env config.Env) string {
	return filepath.Join(env.DataDir(), "umake")
}

func printUsage() {
	fmt.Println(`umake - install and manage developer tools

Usage:
  umake install [--no-ui] <framework>...   Install frameworks
  umake remove <framework>                 Remove an installed framework
  umake list [--installed] [--json]        List available or installed frameworks
  umake platform [--json]                  Show detected platform information
  umake version [--json]                   Show version metadata
  umake help                               Show this help`)
}
