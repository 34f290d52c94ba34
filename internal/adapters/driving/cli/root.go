// Package cli implements the jdrag command line.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/jdrag/internal/core/ports/driving"
	"github.com/custodia-labs/jdrag/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var verbose bool

// Services wired by main.
var (
	ingestService   driving.IngestService
	queryService    driving.QueryService
	documentService driving.DocumentService
	settingsService driving.SettingsService

	// supportedExtensions filters files picked up by watch.
	supportedExtensions []string
)

// errNotConfigured is returned when a command's service was not wired, usually
// because the AI providers are not configured.
var errNotConfigured = errors.New("not configured: run 'jdrag settings' to set up providers")

var rootCmd = &cobra.Command{
	Use:   "jdrag",
	Short: "Ask questions about job descriptions",
	Long: `jdrag ingests job descriptions (pdf, docx, txt, md, html), extracts the role
and seniority, and answers questions using only the text of one document.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if verbose {
			logger.SetVerbose(true)
		}
		return initServices(cmd)
	},
}

// skipServicesAnnotation marks commands that run without services.
const skipServicesAnnotation = "jdrag/skip-services"

// Initializer builds the services once flags are parsed, so they log at the
// requested level. The returned func releases them.
type Initializer func(ctx context.Context) (Services, func(), error)

var (
	initializer   Initializer
	closeServices func()
)

// SetInitializer registers the function that wires services before a command runs.
func SetInitializer(fn Initializer) {
	initializer = fn
}

func initServices(cmd *cobra.Command) error {
	if initializer == nil || cmd.Annotations[skipServicesAnnotation] != "" {
		return nil
	}
	s, closeFn, err := initializer(commandContext(cmd))
	if err != nil {
		return err
	}
	SetServices(s)
	closeServices = closeFn
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Services groups the driving ports the commands run against.
type Services struct {
	Ingest     driving.IngestService
	Query      driving.QueryService
	Document   driving.DocumentService
	Settings   driving.SettingsService
	Extensions []string
}

// SetServices wires the services used by all commands.
func SetServices(s Services) {
	ingestService = s.Ingest
	queryService = s.Query
	documentService = s.Document
	settingsService = s.Settings
	supportedExtensions = s.Extensions
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command, cancelling its context on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() {
		if closeServices != nil {
			closeServices()
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

// commandContext returns the command's context, or Background when run without one (tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
