package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/sirupsen/logrus"
)

// gmail-auth runs the OAuth consent flow once so the API server can send
// notification mail without prompting. Flag defaults come from the same
// GMAIL_* variables the server reads.
func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using flags and environment")
	}

	credentials := flag.String("credentials", envOr("GMAIL_CREDENTIALS_FILE", "credentials.json"), "OAuth client secret file")
	token := flag.String("token", envOr("GMAIL_TOKEN_FILE", "token.json"), "where to write the token")
	flag.Parse()

	config, err := auth.LoadGmailConfig(*credentials)
	if err != nil {
		logrus.WithError(err).Fatal("unable to load gmail credentials")
	}
	if _, err := auth.AuthorizeInteractive(context.Background(), config, *token); err != nil {
		logrus.WithError(err).Fatal("authorization failed")
	}
	logrus.WithField("token", *token).Info("gmail token saved")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
