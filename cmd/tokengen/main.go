// Package main provides a CLI tool for generating local credentials for the
// certifier API: learner bearer tokens and the grading pipeline callback secret.
// Learner tokens use the dev signing key and will NOT work in production.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "certifier/internal/jwt_token"
	id "certifier/pkg/domain"
	"certifier/pkg/secrets"
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in,omitempty"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	learnerCmd := flag.NewFlagSet("learner", flag.ExitOnError)
	callbackCmd := flag.NewFlagSet("callback", flag.ExitOnError)

	learnerID := learnerCmd.String("learner-id", "", "Learner ID (UUID). Generated if empty.")
	learnerKey := learnerCmd.String("signing-key", jwttoken.DevSigningKey, "HS256 signing key (JWT_SIGNING_KEY)")
	learnerTTL := learnerCmd.Duration("ttl", jwttoken.DefaultTokenTTL, "Token time-to-live")
	learnerJSON := learnerCmd.Bool("json", false, "Output as JSON")

	callbackSecret := callbackCmd.String("secret", "", "Existing secret to hash. Generated if empty.")
	callbackJSON := callbackCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "learner":
		_ = learnerCmd.Parse(os.Args[2:])
		generateLearnerToken(*learnerID, *learnerKey, *learnerTTL, *learnerJSON)
	case "callback":
		_ = callbackCmd.Parse(os.Args[2:])
		generateCallbackSecret(*callbackSecret, *callbackJSON)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate local credentials for the certifier API

Usage:
  tokengen <command> [flags]

Commands:
  learner   Generate a learner bearer token (JWT) for /request_certificate
  callback  Generate a callback secret and its CALLBACK_TOKEN_HASH

Examples:
  # Token for a random learner with the dev signing key
  tokengen learner

  # Token for a seeded learner
  tokengen learner -learner-id "550e8400-e29b-41d4-a716-446655440000"

  # Secret for the grading pipeline plus the hash for the server
  tokengen callback -json

Use "tokengen <command> -h" for more information about a command.`)
}

func generateLearnerToken(rawID, signingKey string, ttl time.Duration, jsonOutput bool) {
	learnerID := id.NewLearnerID()
	if rawID != "" {
		parsed, err := id.ParseLearnerID(rawID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -learner-id: %v\n", err)
			os.Exit(1)
		}
		learnerID = parsed
	}

	svc := jwttoken.NewJWTService(signingKey, jwttoken.DefaultIssuer, jwttoken.DefaultAudience, ttl)
	token, err := svc.GenerateLearnerToken(context.Background(), learnerID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			Type:      "learner_token",
			ExpiresIn: ttl.String(),
			Claims: map[string]any{
				"user_id": learnerID.String(),
				"iss":     jwttoken.DefaultIssuer,
				"aud":     jwttoken.DefaultAudience,
			},
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
		return
	}

	fmt.Println("Learner Token (JWT)")
	fmt.Println("===================")
	fmt.Printf("Expires In:  %s\n", ttl)
	fmt.Printf("Learner ID:  %s\n", learnerID)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println(`  curl -H "Authorization: Bearer <token>" -d '{"course_id":"<course key>"}' http://localhost:8080/request_certificate`)
}

func generateCallbackSecret(secret string, jsonOutput bool) {
	if secret == "" {
		generated, err := secrets.Generate()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating secret: %v\n", err)
			os.Exit(1)
		}
		secret = generated
	}

	hash, err := secrets.Hash(secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing secret: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(tokenOutput{
			Token: secret,
			Type:  "callback_secret",
			Usage: map[string]string{
				"header":              "X-Callback-Token: <token>",
				"CALLBACK_TOKEN_HASH": hash,
			},
		})
		return
	}

	fmt.Println("Callback Secret")
	fmt.Println("===============")
	fmt.Printf("Secret:              %s\n", secret)
	fmt.Printf("CALLBACK_TOKEN_HASH: %s\n", hash)
	fmt.Println()
	fmt.Println("Give the secret to the grading pipeline (X-Callback-Token header)")
	fmt.Println("and set CALLBACK_TOKEN_HASH on the server.")
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
