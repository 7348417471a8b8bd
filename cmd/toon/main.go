package main

import (
	"context"
	"fmt"
	"os"

	"github.com/paularlott/cli"
)

var version = "dev"

func formatFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:         "preset",
			Aliases:      []string{"p"},
			Usage:        "Layout preset: default, compact, readable or tabular",
			DefaultValue: "default",
			EnvVars:      []string{"TOON_PRESET"},
		},
		&cli.IntFlag{
			Name:         "indent",
			Usage:        "Spaces per nesting level, -1 keeps the preset value",
			DefaultValue: -1,
			EnvVars:      []string{"TOON_INDENT"},
		},
		&cli.StringFlag{
			Name:    "delimiter",
			Usage:   `Field delimiter, "tab" for a tab character`,
			EnvVars: []string{"TOON_DELIMITER"},
		},
	}
}

func encodeFlags() []cli.Flag {
	return append(formatFlags(),
		&cli.IntFlag{
			Name:    "min-rows",
			Usage:   "Minimum number of uniform records written as a table",
			EnvVars: []string{"TOON_MIN_ROWS"},
		},
		&cli.IntFlag{
			Name:    "max-preview",
			Usage:   "Truncate lists longer than this, 0 for no limit",
			EnvVars: []string{"TOON_MAX_PREVIEW"},
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Write floats in their shortest form",
		},
		&cli.StringFlag{
			Name:    "from",
			Usage:   "Input format: json or yaml, guessed from the file name when empty",
			EnvVars: []string{"TOON_FROM"},
		},
	)
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write the result to a file instead of stdout",
	}
}

func fileArg(usage string) []cli.Argument {
	return []cli.Argument{
		&cli.StringArg{
			Name:  "file",
			Usage: usage + ", - or empty for stdin",
		},
	}
}

func newRootCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:        "toon",
		Version:     version,
		Usage:       "Convert data to and from Token-Oriented Object Notation",
		Description: "toon converts JSON or YAML documents to TOON, a compact line based notation that costs fewer language model tokens, and back again.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
				Global:  true,
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Usage:   "Disable coloured output",
				EnvVars: []string{"NO_COLOR"},
				Global:  true,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "encode",
				Usage:     "Encode JSON or YAML as TOON",
				Flags:     append(encodeFlags(), outputFlag()),
				Arguments: fileArg("JSON or YAML input"),
				Run: func(ctx context.Context, cmd *cli.Command) error {
					a.configure(cmd)
					s := settingsFrom(cmd)
					return a.encode(s, cmd.GetStringArg("file"))
				},
			},
			{
				Name:  "decode",
				Usage: "Decode TOON to JSON or YAML",
				Flags: append(formatFlags(),
					&cli.StringFlag{
						Name:         "to",
						Usage:        "Output format: json or yaml",
						DefaultValue: "json",
					},
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Fail on structural problems instead of recovering",
					},
					outputFlag(),
				),
				Arguments: fileArg("TOON input"),
				Run: func(ctx context.Context, cmd *cli.Command) error {
					a.configure(cmd)
					s := settingsFrom(cmd)
					return a.decode(s, cmd.GetStringArg("file"))
				},
			},
			{
				Name:  "validate",
				Usage: "Check that TOON text decodes without structural problems",
				Flags: formatFlags(),
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "file", Usage: "TOON input, - or empty for stdin"},
				},
				Run: func(ctx context.Context, cmd *cli.Command) error {
					a.configure(cmd)
					s := settingsFrom(cmd)
					return a.validate(s, cmd.GetStringArg("file"))
				},
			},
			{
				Name:  "analyze",
				Usage: "Compare the size and token cost of JSON and TOON",
				Flags: append(encodeFlags(),
					&cli.StringFlag{
						Name:         "method",
						Usage:        "Token estimate: character_ratio, word_count or punctuation",
						DefaultValue: "character_ratio",
						EnvVars:      []string{"TOON_ESTIMATE_METHOD"},
					},
					&cli.IntFlag{
						Name:         "chars-per-token",
						Usage:        "Characters per token for character_ratio",
						DefaultValue: 4,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the report as JSON",
					},
					&cli.BoolFlag{
						Name:  "detailed",
						Usage: "Include recommendations and both encodings",
					},
				),
				Arguments: fileArg("JSON or YAML input"),
				Run: func(ctx context.Context, cmd *cli.Command) error {
					a.configure(cmd)
					s := settingsFrom(cmd)
					return a.analyze(s, cmd.GetStringArg("file"))
				},
			},
			{
				Name:  "benchmark",
				Usage: "Time encoding and decoding and compare preset sizes",
				Flags: append(encodeFlags(),
					&cli.IntFlag{
						Name:         "iterations",
						Aliases:      []string{"n"},
						Usage:        "Number of encode and decode runs",
						DefaultValue: 100,
					},
				),
				Arguments: fileArg("JSON or YAML input"),
				Run: func(ctx context.Context, cmd *cli.Command) error {
					a.configure(cmd)
					s := settingsFrom(cmd)
					return a.benchmark(s, cmd.GetStringArg("file"))
				},
			},
			{
				Name:      "roundtrip",
				Usage:     "Encode, decode and re-encode, reporting any difference",
				Flags:     encodeFlags(),
				Arguments: fileArg("JSON or YAML input"),
				Run: func(ctx context.Context, cmd *cli.Command) error {
					a.configure(cmd)
					s := settingsFrom(cmd)
					return a.roundtrip(s, cmd.GetStringArg("file"))
				},
			},
		},
	}
}

func main() {
	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := newRootCommand(a).Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
