package main

import (
	"fmt"
	"strings"

	"github.com/lukejcollins/litroulette/internal/adapters/random"
	"github.com/lukejcollins/litroulette/internal/config"
	"github.com/lukejcollins/litroulette/internal/core/domain/models"
	"github.com/lukejcollins/litroulette/internal/core/domain/ports"
	"github.com/lukejcollins/litroulette/internal/core/service"
	"github.com/lukejcollins/litroulette/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const genreListMessage = "Available genres include: Fiction, SciFi, Mystery, Romance, Fantasy, History, Horror, and more!"

type rootOptions struct {
	cfgFile   string
	logLevel  string
	asJSON    bool
	genre     string
	genreList bool
	seed      uint64
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "litroulette",
		Short: "Suggest a random book for a genre",
		Long: `LitRoulette picks a random book from an Open Library subject (or an OPDS catalog),
looks up one of its ISBNs and fetches a description from Google Books, falling back
to an exact-title search when the ISBN finds nothing.`,
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(
		&opts.cfgFile, "config", "", "config file (default: ./litroulette.yaml or ~/.litroulette/litroulette.yaml)",
	)
	cmd.PersistentFlags().StringVar(
		&opts.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides LR_LOG_LEVEL)",
	)
	cmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")

	cmd.Flags().StringVarP(&opts.genre, "genre", "g", "", "genre to pick from (default: LR_DEFAULT_GENRE, fiction)")
	cmd.Flags().BoolVar(&opts.genreList, "genrelist", false, "display a list of example genres")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed for a reproducible pick (0 picks a fresh seed)")

	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// setup loads the configuration and applies the persistent flags on top of it.
func setup(cmd *cobra.Command, opts *rootOptions) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, logging.New(cfg.LogLevel, cmd.ErrOrStderr()), nil
}

func runSelect(cmd *cobra.Command, opts *rootOptions) error {
	out := cmd.OutOrStdout()

	if opts.genreList {
		fmt.Fprintf(out, "\n%s\n", genreListMessage)
		if !cmd.Flags().Changed("genre") {
			return nil
		}
	}

	cfg, logger, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	name := cfg.DefaultGenre
	if cmd.Flags().Changed("genre") {
		name = opts.genre
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("genre cannot be blank")
	}
	genre := models.NewGenreQuery(name)

	ctx := cmd.Context()
	hist, err := service.CreateHistoryStore(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.HistoryPath).Msg("history disabled")
	}
	if hist != nil {
		defer hist.Close()
	}

	pipeline := service.CreatePipeline(cfg, randomSource(opts.seed), hist, logger)
	sel, err := pipeline.Select(ctx, genre)
	if err != nil {
		return fmt.Errorf("pick a book for %q: %w", genre.Name(), err)
	}

	return printSelection(out, genre, sel, opts.asJSON)
}

func randomSource(seed uint64) ports.RandomSource {
	if seed == 0 {
		return random.Process{}
	}
	return random.NewSeeded(seed)
}
