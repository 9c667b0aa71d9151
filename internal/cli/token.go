package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"secretsanta/config"
	"secretsanta/internal/adapters/auth"
	"secretsanta/internal/domain"
	"secretsanta/internal/repository/postgres"
)

// NewTokenCommand creates the token command and its subcommands.
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue credentials for users and participants",
	}
	cmd.AddCommand(newTokenUserCommand())
	cmd.AddCommand(newTokenParticipantCommand())
	return cmd
}

func newTokenUserCommand() *cobra.Command {
	var (
		email string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "user <userID>",
		Short: "Mint a bearer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return issueUserToken(cmd.OutOrStdout(), auth.NewJWTIssuer(cfg.JWTSecret), args[0], email, ttl)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func issueUserToken(out io.Writer, issuer domain.TokenIssuer, userID, email string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	token, err := issuer.Issue(userID, email, ttl)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	fmt.Fprintln(out, token)
	return nil
}

func newTokenParticipantCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "participant <participantID>",
		Short: "Generate a participant access token",
		Long:  "Generates a new access token for a participant without an account, stores its hash and prints the token. The token is shown only once; running the command again replaces it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := postgres.Open(cmd.Context(), cfg.DBUrl)
			if err != nil {
				return err
			}
			defer db.Close()
			return issueParticipantToken(cmd.Context(), cmd.OutOrStdout(),
				postgres.NewParticipantRepository(db), auth.NewBcryptHasher(auth.DefaultBcryptCost), args[0])
		},
	}
}

func issueParticipantToken(ctx context.Context, out io.Writer, repo domain.ParticipantRepository, hasher domain.AccessTokenHasher, participantID string) error {
	if err := uuid.Validate(participantID); err != nil {
		return fmt.Errorf("invalid participant id %q", participantID)
	}
	token, err := hasher.Generate()
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	hash, err := hasher.Hash(token)
	if err != nil {
		return fmt.Errorf("hash token: %w", err)
	}
	if err := repo.SetAccessTokenHash(ctx, participantID, hash); err != nil {
		return fmt.Errorf("store token for participant %s: %w", participantID, err)
	}
	fmt.Fprintln(out, token)
	return nil
}
