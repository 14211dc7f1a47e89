package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clipcheck/clipcheck/internal/cache"
	"github.com/clipcheck/clipcheck/internal/extract"
	"github.com/clipcheck/clipcheck/internal/llm"
	"github.com/clipcheck/clipcheck/internal/media"
	"github.com/clipcheck/clipcheck/internal/pipeline"
	"github.com/clipcheck/clipcheck/internal/server"
	"github.com/clipcheck/clipcheck/internal/transcribe"
	"github.com/clipcheck/clipcheck/internal/verify"
)

var (
	serveHost string
	servePort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	Long: `Serve exposes the pipeline over HTTP.

POST /video/verify takes a multipart video upload and answers with the
transcript, the extracted claims, and one verdict per claim. The stage
endpoints (/upload, /stt, /claims/extract, /claims/verify) expose each
step on its own.

Example:
  clipcheck serve
  clipcheck serve --port 8080
  CLIPCHECK_LLM_PROVIDER=ollama clipcheck serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	log := newLogger(cfg.Log)

	llmConfig := llm.ConfigFromModel(cfg.LLM)
	gen, err := llm.NewTextGenerator(llmConfig)
	if err != nil {
		return err
	}
	speech, err := llm.NewSpeechTranscriber(llmConfig)
	if err != nil {
		return err
	}

	audio := media.NewExtractor(cfg.Media, media.NewExecutor())
	transcriber := transcribe.NewTranscriber(speech, cfg.STT.Model)
	claims := extract.NewClaimExtractor(gen)
	verifier := verify.NewVerifier(gen, cfg.Verify)

	deps := server.Deps{
		Runner:      pipeline.NewWithStages(audio, transcriber, claims, verifier, log),
		Audio:       audio,
		Transcriber: transcriber,
		Claims:      claims,
		Verifier:    verifier,
	}
	if cfg.Store.Enabled {
		deps.Store = cache.NewResultStore(cfg.Store.TTL)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.New(cfg.Server, deps, log).Run(ctx)
}
