// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output JSON",
	}
}

// browseCommand pages through one category
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "browse",
		Aliases:   []string{"ls"},
		Usage:     "List a category (films, characters, planets, species, starships)",
		ArgsUsage: "<kind>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "kind"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "page",
				Aliases: []string{"p"},
				Usage:   "Page number",
				Value:   1,
			},
			&cli.StringFlag{
				Name:    "filter",
				Aliases: []string{"f"},
				Usage:   "Only entries whose name or title contains this text",
			},
			jsonFlag(),
		},
		Action: r.Browse,
	}
}

// showCommand prints one record with its cross-references
func showCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one record by id, name or url",
		ArgsUsage: "<kind> <id|name|url>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "kind"},
			&cli.StringArg{Name: "ref"},
		},
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Show,
	}
}

// searchCommand searches every category
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search names and titles across all categories",
		ArgsUsage: "<query>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Search,
	}
}

// favoritesCommand handles the favorites list
func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage favorites",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List favorites in the order they were added",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "kind",
						Aliases: []string{"k"},
						Usage:   "Only favorites of this kind",
					},
					jsonFlag(),
				},
				Action: r.FavoritesList,
			},
			{
				Name:      "toggle",
				Usage:     "Add a record to favorites, or remove it if already saved",
				ArgsUsage: "<kind> <id|name|url>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "kind"},
					&cli.StringArg{Name: "ref"},
				},
				Action: r.FavoritesToggle,
			},
			{
				Name:  "clear",
				Usage: "Remove every favorite",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Confirm removal",
					},
				},
				Action: r.FavoritesClear,
			},
			{
				Name:  "export",
				Usage: "Export favorites to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format (json, csv, md, txt)",
						Value: "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: favorites.<format>)",
					},
				},
				Action: r.FavoritesExport,
			},
		},
	}
}

// serveCommand runs the local JSON API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the favorites JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default from config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default from config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand launches the terminal UI
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Launch the interactive terminal UI",
		Action: r.TUI,
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write the default configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
