// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, enrichCommand, keyCommand, cacheCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the track cache database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// enrichCommand resolves metadata for an imported track list
func enrichCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "enrich",
		Usage: "Resolve BPM, key and genres for a track list",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Track list file (.json or .csv)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: stdout)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json or csv",
				Value:   "json",
			},
			&cli.FloatFlag{
				Name:  "min-bpm",
				Usage: "Keep only tracks at or above this tempo",
			},
			&cli.FloatFlag{
				Name:  "max-bpm",
				Usage: "Keep only tracks at or below this tempo",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.Enrich,
	}
}

// keyCommand converts musical key notation to Camelot wheel positions
func keyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "key",
		Usage: "Convert a musical key to Camelot notation",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "key",
			},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "pitch-class",
				Usage: "Numeric pitch class 0-11 (C=0) instead of a key name",
				Value: -1,
			},
			&cli.BoolFlag{
				Name:  "minor",
				Usage: "Treat the pitch class as a minor key",
			},
		},
		Action: r.Key,
	}
}

// cacheCommand inspects the persistent track cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the local track metadata cache",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show how many tracks the cache holds",
				Action: r.CacheStats,
			},
			{
				Name:  "get",
				Usage: "Look up one cached track",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "artist",
						Usage:    "Artist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Track title",
						Required: true,
					},
				},
				Action: r.CacheGet,
			},
			{
				Name:  "genres",
				Usage: "Show cached genres for a track list without any network lookups",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Track list file (.json or .csv)",
						Required: true,
					},
				},
				Action: r.CacheGenres,
			},
		},
	}
}

// tuiCommand launches the interactive enrichment view
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Enrich a track list interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Track list file (.json or .csv)",
				Required: true,
			},
		},
		Action: r.TUI,
	}
}
