package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tonypoem-foundation/site-backend/api"
	"github.com/tonypoem-foundation/site-backend/auth"
	"github.com/tonypoem-foundation/site-backend/config"
	"github.com/tonypoem-foundation/site-backend/content"
	"github.com/tonypoem-foundation/site-backend/database"
	"github.com/tonypoem-foundation/site-backend/models"
	"github.com/tonypoem-foundation/site-backend/services"
	"github.com/tonypoem-foundation/site-backend/storage"
)

var (
	envFile         string
	shutdownTimeout time.Duration
	generateOutPath string

	// cfg is the merged environment, .env file and parameter store.
	cfg map[string]string
)

var rootCmd = &cobra.Command{
	Use:   "foundation",
	Short: "Backend for the foundation website",
	Long: `Serves the public site content, the contact and donation forms and the
admin dashboard. Content lives in a document store, uploads in a blob store.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: Error loading %s file: %v\n", envFile, err)
		}

		cfg = config.New()
		setupLogging(cfg)

		return loadParameterStore(cmd.Context(), cfg)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the documents table",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.OpenGorm(cfg)
		if err != nil {
			return err
		}
		return models.Migrate(db)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate typed query helpers for the documents table",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.OpenGorm(cfg)
		if err != nil {
			return err
		}
		return models.GenerateModels(db, generateOutPath)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print database columns the models do not declare",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.OpenGorm(cfg)
		if err != nil {
			return err
		}
		if n := models.GenerateColumnMismatchReport(db); n > 0 {
			return fmt.Errorf("%d column mismatches", n)
		}
		return nil
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash to use as ADMIN_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before reading the environment")
	serveCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "Time allowed for in-flight requests on shutdown")
	generateCmd.Flags().StringVar(&generateOutPath, "out", "./generated", "Output directory for generated code")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}

func setupLogging(c map[string]string) {
	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString(c, "LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.GetBool(c, "LOG_PRETTY", false) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// loadParameterStore merges SSM parameters under SSM_PARAMETER_PATH into c.
func loadParameterStore(ctx context.Context, c map[string]string) error {
	path := config.GetString(c, "SSM_PARAMETER_PATH", "")
	if path == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.GetString(c, "AWS_REGION", "us-east-1")))
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	n, err := config.LoadSSMParameters(ctx, ssm.NewFromConfig(awsCfg), c, path)
	if err != nil {
		return err
	}
	log.Info().Int("parameters", n).Str("path", path).Msg("Loaded parameter store")
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log.Info().Msg("Initializing app...")

	if err := config.Require(cfg, "JWT_SECRET"); err != nil {
		return err
	}
	secret := config.GetString(cfg, "JWT_SECRET", "")

	store, err := database.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	blobs, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("error opening blob storage: %w", err)
	}

	verifier, err := auth.NewVerifier(cfg)
	if err != nil {
		return fmt.Errorf("error configuring admin sign-in: %w", err)
	}
	ttl := config.GetDuration(cfg, "SESSION_TTL", auth.DefaultSessionTTL)
	sessions := auth.NewSessions(verifier, []byte(secret), ttl)
	unsubscribe := sessions.Subscribe(func(e auth.Event) {
		log.Info().Str("event", string(e.Kind)).Str("admin", e.Session.Identity.Email).Msg("Admin session changed")
	})
	defer unsubscribe()

	deps := api.Dependencies{
		Repository: content.NewRepository(store, blobs),
		Sessions:   sessions,
		Notifier:   services.NewEmailNotifier(cfg),
		Guard:      content.NewGuard(),
	}
	if files, ok := blobs.(api.BlobFiles); ok {
		deps.BlobFiles = files
	}
	server, err := api.NewServer(deps, cfg)
	if err != nil {
		return fmt.Errorf("error initializing server: %w", err)
	}

	errChannel := make(chan error, 2)

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(shutdownTimeout)
	return nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
