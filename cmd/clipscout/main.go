package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/keagan/clipscout/internal/config"
	"github.com/keagan/clipscout/internal/ffmpeg"
	"github.com/keagan/clipscout/internal/logging"
	"github.com/keagan/clipscout/internal/pipeline"
	"github.com/keagan/clipscout/internal/text"
	"github.com/keagan/clipscout/pkg/util"
)

var (
	cfgFile string
	verbose bool
	jsonLog bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "clipscout",
	Short:         "clipscout - multimodal highlight detection",
	Long:          "Finds the moments worth clipping in long-form video by combining audio, visual and transcript signals.",
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(logging.Options{Verbose: verbose, JSON: jsonLog})

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
		return nil
	},
}

var analyzeOpts struct {
	transcript     string
	out            string
	minDuration    float64
	confidence     float64
	mergeTolerance float64
	noAudio        bool
	noVideo        bool
	noProgress     bool
	clipsDir       string
	copyCodec      bool
	thumbnails     bool
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./clipscout.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "write logs as JSON lines")

	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeOpts.transcript, "transcript", "t", "", "transcript JSON with timed segments")
	f.StringVarP(&analyzeOpts.out, "out", "o", "", "write the highlight manifest to this file")
	f.Float64Var(&analyzeOpts.minDuration, "min-duration", 0, "minimum highlight length in seconds")
	f.Float64Var(&analyzeOpts.confidence, "confidence", 0, "minimum highlight confidence in [0,1]")
	f.Float64Var(&analyzeOpts.mergeTolerance, "merge-tolerance", 0, "merge candidates closer than this many seconds")
	f.BoolVar(&analyzeOpts.noAudio, "no-audio", false, "skip the audio detectors")
	f.BoolVar(&analyzeOpts.noVideo, "no-video", false, "skip the visual detectors")
	f.BoolVar(&analyzeOpts.noProgress, "no-progress", false, "hide frame progress bars")
	f.StringVar(&analyzeOpts.clipsDir, "clips-dir", "", "cut every highlight into this directory")
	f.BoolVar(&analyzeOpts.copyCodec, "copy-codec", false, "cut clips without re-encoding")
	f.BoolVar(&analyzeOpts.thumbnails, "thumbnails", false, "save a 320x180 still next to every clip")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(configCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [input video]",
	Short: "Detect highlights in a video and/or transcript",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		applyFlagOverrides(cmd, cfg)
		logger := logging.WithComponent("cli")

		req := pipeline.Request{
			SkipAudio: analyzeOpts.noAudio,
			SkipVideo: analyzeOpts.noVideo,
		}
		if len(args) == 1 {
			req.MediaPath = args[0]
			if !util.FileExists(req.MediaPath) {
				return fmt.Errorf("input not found: %s", req.MediaPath)
			}
		}
		if analyzeOpts.transcript != "" {
			t, err := text.LoadTranscript(analyzeOpts.transcript)
			if err != nil {
				return err
			}
			req.Transcript = t
		}
		if req.MediaPath == "" && req.Transcript == nil {
			return errors.New("need an input video, a --transcript, or both")
		}

		deps := pipeline.Dependencies{}
		var progress *frameProgress
		if req.MediaPath != "" {
			exec, err := ffmpeg.New(log.Logger, cfg.FFmpegExecutor())
			switch {
			case err != nil && req.Transcript == nil:
				return err
			case err != nil:
				logger.Warn().Err(err).Msg("ffmpeg unavailable, running transcript detectors only")
			default:
				deps.Audio = exec.AudioLoader(cfg.Audio.SampleRate, cfg.TempDir)
				deps.Frames = exec.FrameOpener()
				if analyzeOpts.clipsDir != "" {
					exporter := exec.ClipExporter(analyzeOpts.clipsDir, analyzeOpts.copyCodec)
					if analyzeOpts.thumbnails {
						exporter.WithThumbnails(320, 180)
					}
					deps.Sinks = append(deps.Sinks, exporter)
				}
				if !analyzeOpts.noProgress && !analyzeOpts.noVideo && !jsonLog {
					progress = newFrameProgress(os.Stderr)
					deps.Progress = progress.Update
				}
			}
		}

		pipe, err := pipeline.New(log.Logger, cfg, deps)
		if err != nil {
			return err
		}

		res, err := pipe.Detect(cmd.Context(), req)
		if progress != nil {
			progress.Finish()
		}
		if res == nil {
			return err
		}

		printHighlights(cmd.OutOrStdout(), res)

		if analyzeOpts.out != "" {
			if werr := pipeline.WriteManifest(analyzeOpts.out, pipeline.NewManifest(res)); werr != nil {
				return werr
			}
			logger.Info().Str("manifest", analyzeOpts.out).Msg("manifest written")
		}

		if res.AllFailed() {
			return errors.New("every detector failed; see the log for details")
		}
		return err
	},
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("min-duration") {
		cfg.Detection.MinDuration = analyzeOpts.minDuration
	}
	if flags.Changed("confidence") {
		cfg.Detection.ConfidenceThreshold = analyzeOpts.confidence
	}
	if flags.Changed("merge-tolerance") {
		cfg.Detection.MergeTolerance = analyzeOpts.mergeTolerance
	}
}

func printHighlights(w io.Writer, res *pipeline.Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSTART\tEND\tCONF\tTYPE\tDESCRIPTION")
	for i, h := range res.Highlights {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\t%s\n",
			i+1,
			util.FormatSeconds(h.Start),
			util.FormatSeconds(h.End),
			h.Confidence,
			h.Type,
			truncate(h.Description, 80),
		)
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%d highlights from %d candidates\n", len(res.Highlights), res.Candidates)
	for _, rep := range res.Failed() {
		status := "failed"
		if rep.Unavailable() {
			status = "unavailable"
		}
		fmt.Fprintf(w, "  %s %s: %v\n", rep.Detector, status, rep.Err)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-3])) + "..."
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "clipscout.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if util.FileExists(path) {
			return fmt.Errorf("%s already exists", path)
		}
		if err := util.EnsureDir(filepath.Dir(path)); err != nil {
			return err
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		logger := logging.WithComponent("cli")
		logger.Info().Str("path", path).Msg("config written")
		return nil
	},
}
