package main

import (
	"flag"
	"log"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/app"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	if err := app.Run(*configPath); err != nil {
		log.Fatal(err)
	}
}
