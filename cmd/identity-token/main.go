// Command identity-token issues a bearer token for local testing against monopolyd.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"monopoly/internal/identity"
)

func main() {
	var (
		account string
		secret  string
		issuer  string
		ttl     time.Duration
	)
	flag.StringVar(&account, "account", "", "account id to put in the token subject")
	flag.StringVar(&secret, "secret", os.Getenv("MONOPOLY_JWT_SECRET"), "HMAC secret (default: MONOPOLY_JWT_SECRET)")
	flag.StringVar(&issuer, "issuer", envOr("MONOPOLY_JWT_ISSUER", "monopoly"), "token issuer")
	flag.DurationVar(&ttl, "ttl", identity.DefaultTTL, "token lifetime")
	flag.Parse()

	if account == "" {
		fmt.Fprintln(os.Stderr, "Error: -account is required")
		flag.Usage()
		os.Exit(2)
	}
	token, err := identity.NewService(secret, issuer, ttl).Issue(account)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
