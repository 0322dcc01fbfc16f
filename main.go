package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

var (
	version   = "dev"
	commit    = "local"
	buildDate = "unknown"
)

// Globals are shared by every command and override the config file.
type Globals struct {
	Config   string `short:"c" default:"pokernow-ohh.hcl" help:"Configuration file (HCL). Defaults apply when it does not exist."`
	LogLevel string `name:"log-level" help:"Override logging.level (debug, info, warn, error)."`
	Identity string `help:"Override processing.identity (interactive, batch, strict)."`
	Answers  string `help:"Override processing.answers, the TOML answers file for batch identity resolution."`
}

type CLI struct {
	Globals

	Version    kong.VersionFlag `short:"v" help:"Show version"`
	Convert    ConvertCmd       `cmd:"" help:"Convert Poker Now logs to Open Hand History files"`
	Watch      WatchCmd         `cmd:"" help:"Convert logs in the input directory whenever they change"`
	Identities IdentitiesCmd    `cmd:"" help:"List the identity directory"`
	Stats      StatsCmd         `cmd:"" help:"Print per-player totals from the hand repository"`
	Config     ConfigCmd        `cmd:"" help:"Manage the configuration file"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("pokernow-ohh"),
		kong.Description("Compile Poker Now CSV exports into Open Hand History documents"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version + " (" + commit + ", " + buildDate + ")",
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := kctx.Run(&cli.Globals)
	kctx.FatalIfErrorf(err)
}
