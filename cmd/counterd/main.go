package main

import (
	"counterd/internal/di"
	"counterd/internal/structures"
	"flag"
	"fmt"
	"github.com/joho/godotenv"
	"os"
)

func main() {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the YAML config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "mirror logs to the console")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "counterd: %s\n", err)
		os.Exit(1)
	}
}
