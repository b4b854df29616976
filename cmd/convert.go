package cmd

import (
	"fmt"
	"log/slog"

	"github.com/kfreiman/docbridge/internal/converter"
	"github.com/kfreiman/docbridge/internal/mcp"
	"github.com/kfreiman/docbridge/internal/storage"
	"github.com/spf13/cobra"
)

var convertFlags struct {
	from   string
	to     string
	output string
}

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Convert a document to another format",
	Example: `  docbridge convert report.docx --to pdf
  docbridge convert notes.md --to docx --output /tmp/notes.docx
  docbridge convert page.htm --from html --to markdown`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		source := args[0]

		to, err := converter.ParseFormat(convertFlags.to)
		if err != nil {
			return err
		}
		var from converter.Format
		if convertFlags.from != "" {
			from, err = converter.ParseFormat(convertFlags.from)
		} else {
			from, err = converter.FormatOf(source)
		}
		if err != nil {
			return err
		}

		dispatcher, logger, err := newDispatcher()
		if err != nil {
			return err
		}
		defer func() { _ = dispatcher.Close() }()

		outcome := dispatcher.Dispatch(ctx, converter.Request{
			Source: source,
			Output: convertFlags.output,
			From:   from,
			To:     to,
		})
		if !outcome.OK() {
			logger.DebugContext(ctx, "conversion failed", "source", source, "error", outcome.Err)
			return outcome.Err
		}

		fmt.Fprintln(cmd.OutOrStdout(), outcome.String())
		return nil
	},
}

// newDispatcher builds a dispatcher from the same environment as the server
func newDispatcher() (*converter.Dispatcher, *slog.Logger, error) {
	cfg, err := mcp.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := loadLogger(cfg.Debug)
	if err != nil {
		return nil, nil, err
	}

	scratch, err := storage.NewScratchManager(storage.ScratchConfig{
		BasePath:   cfg.ScratchPath,
		DefaultTTL: cfg.ScratchTTL,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, err
	}

	return converter.NewDispatcher(converter.Config{
		Scratch:     scratch,
		ToolTimeout: cfg.ToolTimeout,
		Logger:      logger,
	}), logger, nil
}

func init() {
	convertCmd.Flags().StringVar(&convertFlags.to, "to", "", "Target format (docx, doc, pdf, txt, html, md, rtf, odt)")
	convertCmd.Flags().StringVar(&convertFlags.from, "from", "", "Source format (default: inferred from the input extension)")
	convertCmd.Flags().StringVarP(&convertFlags.output, "output", "o", "", "Output path (default: input name with the target extension)")
	_ = convertCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(convertCmd)
}
