// devtoken mints access tokens for local development and curl sessions.
//
// It is NOT part of the deployed system: it exists so a developer can hit
// protected routes without going through signup, using the same HS256 secret
// the API verifies with.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ghumakkad/trip-share-api/internal/domain"
	"github.com/ghumakkad/trip-share-api/internal/platform/auth"
)

func main() {
	userID := flag.String("user", "dev-user", "user id to embed as the token subject")
	email := flag.String("email", "dev@example.com", "email claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	tokens := auth.NewTokenManager(secret, *ttl)
	tok, err := tokens.Issue(auth.Actor{UserID: domain.UserID(*userID), Email: *email})
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Println(tok)
}
