// Package main is the entry point for the midi2mml CLI
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mabimml/midi2mml/pkg/api"
	"github.com/mabimml/midi2mml/pkg/converter"
	"github.com/mabimml/midi2mml/pkg/settings"
	"github.com/mabimml/midi2mml/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile string
	modeName   string
	charLimit  int
	compress   bool
	sortName   string
	asJSON     bool
	serverPort int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "midi2mml",
	Short: "Convert MIDI files into in-game MML voice scripts",
	Long: `midi2mml converts standard MIDI files into the MML notation the game's
bard instruments play, splitting polyphonic input into a melody voice and
chord voices that fit the client's per-score character limit.

Examples:
  midi2mml convert song.mid
  midi2mml convert song.mid --mode instrument --char-limit 900
  midi2mml convert song.mid --json -o song.json
  midi2mml tui
  midi2mml serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var convertCmd = &cobra.Command{
	Use:   "convert <input.mid>",
	Short: "Convert a MIDI file to MML voices",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (default: stdout)")
	convertCmd.Flags().StringVarP(&modeName, "mode", "m", "", "Partitioning mode: normal or instrument")
	convertCmd.Flags().IntVarP(&charLimit, "char-limit", "l", 0, "Per-voice character limit")
	convertCmd.Flags().BoolVarP(&compress, "compress", "c", false, "Favor short plain note lengths over precision")
	convertCmd.Flags().StringVarP(&sortName, "sort", "s", "", "Voice ordering: default, name or instrument")
	convertCmd.Flags().BoolVar(&asJSON, "json", false, "Emit the full result as JSON")

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

// buildOptions starts from the saved preferences and lets flags override
func buildOptions(cmd *cobra.Command) (converter.Options, converter.SortBy, error) {
	prefs, err := settings.Load()
	if err != nil {
		prefs = settings.Default()
	}
	opts := prefs.Options()
	sortBy := prefs.SortBy

	if cmd.Flags().Changed("mode") {
		switch converter.Mode(strings.ToLower(modeName)) {
		case converter.ModeNormal:
			opts.Mode = converter.ModeNormal
		case converter.ModeInstrument:
			opts.Mode = converter.ModeInstrument
		default:
			return opts, sortBy, fmt.Errorf("unknown mode %q (want normal or instrument)", modeName)
		}
	}
	if cmd.Flags().Changed("char-limit") {
		if charLimit <= 0 {
			return opts, sortBy, fmt.Errorf("char limit must be positive, got %d", charLimit)
		}
		opts.CharLimit = charLimit
	}
	if cmd.Flags().Changed("compress") {
		opts.Compress = compress
	}
	if cmd.Flags().Changed("sort") {
		switch converter.SortBy(strings.ToLower(sortName)) {
		case converter.SortDefault, converter.SortName, converter.SortInstrument:
			sortBy = converter.SortBy(strings.ToLower(sortName))
		default:
			return opts, sortBy, fmt.Errorf("unknown sort %q (want default, name or instrument)", sortName)
		}
	}
	return opts, sortBy, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	opts, sortBy, err := buildOptions(cmd)
	if err != nil {
		return err
	}

	result, err := converter.New().ConvertFile(input, opts)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("conversion failed: %s", result.Error)
	}
	result.Voices = converter.SortVoices(result.Voices, sortBy)

	var out strings.Builder
	if asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		out.Write(data)
		out.WriteString("\n")
	} else {
		fmt.Fprintf(&out, "%s: %d BPM, %d notes read\n\n", filepath.Base(input), result.BPM, result.TotalNotes)
		for _, v := range result.Voices {
			fmt.Fprintf(&out, "[%s] %d chars, %d notes, %.1fs\n%s\n\n", v.Name, v.CharCount, v.NoteCount, v.Duration, v.Content)
		}
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(out.String()), 0644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", outputFile)
		return nil
	}
	fmt.Print(out.String())
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run()
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort)
}
