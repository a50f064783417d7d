package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	a := &app{}
	flag.StringVar(&a.configPath, "config", defaultConfigPath(), "path to the YAML config file")

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&serveCmd{app: a}, "")
	commander.Register(&reportCmd{app: a}, "")
	commander.Register(&watchCmd{app: a}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}
