package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/seqletlab/motifcull/internal/artifact"
	"github.com/seqletlab/motifcull/internal/background"
	"github.com/seqletlab/motifcull/internal/config"
	"github.com/seqletlab/motifcull/internal/ingest"
	"github.com/seqletlab/motifcull/internal/pipeline"
)

var version = "dev"

var verbose bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "motifcull",
	Short:   "Seqlet cutoff and trim analysis for motif-discovery output",
	Long:    "motifcull derives per-pattern quantile cutoffs from a motif-discovery artifact, filters and trims the called seqlets, and emits the cutoffs for downstream motif scanning.",
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(genomesCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("motifcull", version)
	},
}

// --- run command ---

var runThreads int

var runCmd = &cobra.Command{
	Use:   "run [config.json]",
	Short: "Run the cutoff analysis described by a config document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return err
		}
		applyVerbosity(cfg.Verbosity)

		store, err := artifact.Open(cfg.ModiscoH5)
		if err != nil {
			return err
		}
		defer store.Close()

		var tracks artifact.TrackReader
		if cfg.ContribH5 != "" {
			contribStore, err := artifact.Open(cfg.ContribH5)
			if err != nil {
				return err
			}
			defer contribStore.Close()
			tracks = contribStore
		}

		pipe := pipeline.New(cfg, store, tracks, runThreads)
		result, runErr := pipe.Run()

		for _, pr := range result.Patterns {
			fmt.Printf("%s/%s (%s): %d seqlets, %d retained\n",
				pr.Pattern.Metacluster, pr.Pattern.Pattern, pr.Pattern.DisplayName,
				len(pr.Seqlets), pr.Retained)
		}
		if runErr != nil {
			fmt.Printf("\nAborted after %d patterns.\n", len(result.Patterns))
			return runErr
		}
		fmt.Println("\nAnalysis complete.")
		return nil
	},
}

func init() {
	runCmd.Flags().IntVarP(&runThreads, "threads", "t", runtime.NumCPU(), "Number of parallel pattern workers")
}

// applyVerbosity maps the config's verbosity key onto the stdlib logger.
// WARNING and ERROR silence the informational step lines.
func applyVerbosity(level string) {
	switch level {
	case "WARNING", "ERROR":
		log.SetOutput(io.Discard)
	}
}

// --- validate command ---

var validateCmd = &cobra.Command{
	Use:   "validate [config.json...]",
	Short: "Check config documents against the grammar without running",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			_, err := config.Load(path)
			if err == nil {
				fmt.Printf("%s: ok\n", path)
				continue
			}
			failed++
			var schemaErr *config.SchemaError
			if errors.As(err, &schemaErr) {
				fmt.Printf("%s: %s: %s\n", path, schemaErr.Path, schemaErr.Msg)
			} else {
				fmt.Printf("%s: %v\n", path, err)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d documents failed to validate", failed, len(args))
		}
		return nil
	},
}

// --- import command ---

var importArtifactPath string

var importCmd = &cobra.Command{
	Use:   "import [bundle.json]",
	Short: "Build an artifact container from a converter bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := artifact.Create(importArtifactPath)
		if err != nil {
			return err
		}
		defer store.Close()

		sum, err := ingest.File(store, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d patterns, %d seqlets, %d contribution tracks into %s\n",
			sum.Patterns, sum.Seqlets, sum.Tracks, store.Path())
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importArtifactPath, "artifact", "a", "", "Artifact container to create or extend (required)")
	importCmd.MarkFlagRequired("artifact")
}

// --- genomes command ---

var genomesCmd = &cobra.Command{
	Use:   "genomes",
	Short: "List known genome background compositions",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Known genomes (A, C, G, T):")
		for _, name := range background.Genomes() {
			probs, _ := background.Probs(name)
			fmt.Printf("  %-10s [%.3f, %.3f, %.3f, %.3f]\n",
				name, probs[0], probs[1], probs[2], probs[3])
		}
	},
}
