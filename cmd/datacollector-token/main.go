// datacollector-token mints a bearer token for a user the identity provider
// has already signed in, using the signing secret from the service config.
//
//	datacollector-token --subject google-oauth2|123 --email ada@example.com
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/datacollector/internal/auth"
	"github.com/nerrad567/datacollector/internal/infrastructure/config"
)

const defaultConfigPath = "configs/config.yaml"

type tokenOptions struct {
	configPath string
	subject    string
	email      string
	name       string
	ttl        int
	asJSON     bool
}

// tokenOutput is printed with --json.
type tokenOutput struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Subject     string `json:"subject"`
}

func main() {
	cmd := newRootCommand(os.Stdout)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "datacollector-token: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	opts := tokenOptions{configPath: os.Getenv("DATACOLLECTOR_CONFIG")}
	if opts.configPath == "" {
		opts.configPath = defaultConfigPath
	}

	cmd := &cobra.Command{
		Use:   "datacollector-token",
		Short: "Mint a bearer token for the people API",
		Example: "  datacollector-token --subject user-1 --email ada@example.com\n" +
			"  datacollector-token --subject user-1 --ttl 15 --json",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return errors.New("datacollector-token does not accept positional arguments")
			}
			return mint(out, opts)
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(out)

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", opts.configPath, "path to the service config file")
	f.StringVarP(&opts.subject, "subject", "s", "", "identity provider user id (required)")
	f.StringVar(&opts.email, "email", "", "email address of the signed-in user")
	f.StringVar(&opts.name, "name", "", "display name of the signed-in user")
	f.IntVar(&opts.ttl, "ttl", 0, "token lifetime in minutes (default: security.auth.token_ttl)")
	f.BoolVar(&opts.asJSON, "json", false, "print the token as JSON")
	//nolint:errcheck // flag is defined above
	cmd.MarkFlagRequired("subject")

	return cmd
}

func mint(out io.Writer, opts tokenOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ttl := opts.ttl
	if ttl <= 0 {
		ttl = cfg.Security.Auth.TokenTTL
	}

	token, err := auth.GenerateAccessToken(auth.Identity{
		Subject: opts.subject,
		Email:   opts.email,
		Name:    opts.name,
	}, cfg.Security.Auth.JWTSecret, cfg.Security.Auth.Issuer, ttl)
	if err != nil {
		return fmt.Errorf("minting token: %w", err)
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(tokenOutput{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int(expiresIn(ttl).Seconds()),
			Subject:     opts.subject,
		})
	}

	_, err = fmt.Fprintln(out, token)
	return err
}

// expiresIn mirrors the lifetime GenerateAccessToken applies.
func expiresIn(ttlMinutes int) time.Duration {
	if ttlMinutes <= 0 {
		ttlMinutes = auth.DefaultTokenTTL
	}
	return time.Duration(ttlMinutes) * time.Minute
}
