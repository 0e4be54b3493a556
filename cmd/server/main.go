package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/SachyamKarki/Karki-Scrapper/config"
	"github.com/SachyamKarki/Karki-Scrapper/internal/app"
)

var configPath = flag.String("config", "config.json", "service configuration file")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		*configPath = envPath
	}

	cfg := config.MustReadConfig(*configPath)

	application, err := app.NewApp(cfg)
	if err != nil {
		panic(err)
	}

	// Block until Stop is called or an error occurs
	if err := application.Start(); err != nil {
		panic(err)
	}
}
