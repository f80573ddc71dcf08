// Command devtoken mints an HS256 bearer token for local runs, using the same auth
// section as the API:
//
//	go run ./cmd/devtoken -sub alice -email alice@example.com
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"go-gin-storefront/internal/app"
	"go-gin-storefront/internal/core/auth"
	"go-gin-storefront/internal/core/config"
)

func main() {
	_ = godotenv.Load()
	var (
		cfgPath = flag.String("config", os.Getenv("CONFIG_PATH"), "config file")
		sub     = flag.String("sub", "", "subject id (required)")
		email   = flag.String("email", "", "email claim")
		name    = flag.String("name", "", "name claim")
		ttl     = flag.Duration("ttl", 0, "token lifetime (default: auth.accessTokenTTLMin)")
	)
	flag.Parse()
	if *sub == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.Auth.Mode != "hs256" {
		fmt.Fprintf(os.Stderr, "devtoken only works in hs256 mode (configured: %s)\n", cfg.Auth.Mode)
		os.Exit(1)
	}
	j := app.HS256(cfg.Auth)
	if *ttl > 0 {
		j.TTL = *ttl
	}
	if j.TTL <= 0 {
		j.TTL = time.Hour
	}
	tok, err := j.Issue(auth.Identity{SubjectID: *sub, Email: *email, DisplayName: *name})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
