package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/SachyamKarki/Karki-Scrapper/config"
	"github.com/SachyamKarki/Karki-Scrapper/internal/auth"
	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
	"github.com/SachyamKarki/Karki-Scrapper/internal/mongo"
)

var (
	configPath = flag.String("config", "config.json", "service configuration file")
	email      = flag.String("email", "", "account email")
	password   = flag.String("password", "", "account password")
	role       = flag.String("role", domain.RoleAdmin, "account role (admin or superadmin)")
)

// createadmin seeds a staff account so the first operator can log in.
func main() {
	flag.Parse()
	_ = godotenv.Load()
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		*configPath = envPath
	}

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: createadmin -email <email> -password <password> [-role admin|superadmin]")
		os.Exit(1)
	}
	if !domain.ValidRole(*role) {
		fmt.Fprintf(os.Stderr, "invalid role %q\n", *role)
		os.Exit(1)
	}

	cfg := config.MustReadConfig(*configPath)
	ctx := context.Background()

	client, err := mongo.NewClient(ctx, cfg.MongoURL, cfg.MongoDatabase)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to MongoDB: %v\n", err)
		os.Exit(1)
	}
	defer client.Close(ctx)

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	user, err := client.Users().Create(ctx, *email, hash, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create account: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("created %s account %s (%s)\n", user.Role, user.Email, user.HexID())
}
