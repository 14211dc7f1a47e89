package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipcheck/clipcheck/internal/llm"
	"github.com/clipcheck/clipcheck/internal/validate"
	"github.com/clipcheck/clipcheck/internal/verify"
)

var verifyTimeout time.Duration

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <claim>",
	Short: "Rate a single claim without a video",
	Long: `Verify sends one claim straight to the verification stage and prints
the verdict as JSON.

Example:
  clipcheck verify "The Eiffel Tower is in Berlin"`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", time.Minute, "verification timeout")
}

func runVerify(cmd *cobra.Command, args []string) error {
	claim := args[0]
	if err := validate.New().Claim(claim); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	newLogger(cfg.Log)

	gen, err := llm.NewTextGenerator(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), verifyTimeout)
	defer cancel()

	verdict, err := verify.NewVerifier(gen, cfg.Verify).Verify(ctx, claim)
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	data, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
