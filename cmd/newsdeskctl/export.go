package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/meridianpress/newsdesk/internal/common"
	"github.com/meridianpress/newsdesk/internal/logging"
	"github.com/meridianpress/newsdesk/internal/server/archive"
	"github.com/meridianpress/newsdesk/internal/server/config"
	"github.com/meridianpress/newsdesk/internal/server/crossref"
	"github.com/meridianpress/newsdesk/internal/server/users"
	"github.com/meridianpress/newsdesk/internal/server/vocab"
)

var exportVocabPath string

func init() {
	exportCmd.Flags().StringVar(&exportVocabPath, "vocab", "", "vocabulary YAML overriding the built-in role maps")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <article.json>",
	Short: "Render Crossref deposit XML from an exported article",
	Long: `Render Crossref deposit XML from an article exported as JSON.

The export runs offline: contributor names that would normally come from
the user directory are left empty. Example:

  newsdeskctl export article.json > deposit.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

// offlineDirectory satisfies the formatter's user lookup without a
// database; every lookup degrades to empty contributor names.
type offlineDirectory struct{}

func (offlineDirectory) GetByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	return nil, common.ErrorNotFound
}

func (offlineDirectory) GetByDisplayName(ctx context.Context, displayName string) (*users.User, error) {
	return nil, common.ErrorNotFound
}

// offlineSequencer assigns no real sequence numbers outside the server.
type offlineSequencer struct{}

func (offlineSequencer) NextPublishSequence(ctx context.Context, subscriber string) (int, error) {
	return 0, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading article: %w", err)
	}

	item := &archive.Item{}
	if err := json.Unmarshal(raw, item); err != nil {
		return fmt.Errorf("decoding article: %w", err)
	}

	v, err := vocab.Load(exportVocabPath)
	if err != nil {
		return err
	}

	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	formatter := crossref.NewFormatter(offlineDirectory{}, offlineSequencer{}, v, cfg, logger)

	out, err := formatter.Export(cmd.Context(), item)
	if err != nil {
		return err
	}

	fmt.Fprint(os.Stdout, out)
	return nil
}
