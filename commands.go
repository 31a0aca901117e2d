package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/spance/iphone-use-mcp/phoneagent/capture"
	"github.com/spance/iphone-use-mcp/phoneagent/ios"
)

var snapshotOut string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save a raw and a compressed screenshot of the device",
	Args:  cobra.NoArgs,
	RunE:  runSnapshot,
}

var compressColors []int

var compressCmd = &cobra.Command{
	Use:   "compress <png-file>",
	Short: "Re-encode a PNG with several palette sizes and report the smallest",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompress,
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", ".", "Output directory")

	compressCmd.Flags().IntSliceVar(&compressColors, "colors", []int{4, 8, 12, 16}, "Palette sizes to try")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	caps, err := config.Capabilities()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(snapshotOut, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	sessionCtx := ctx
	if config.SessionTimeout > 0 {
		var cancel context.CancelFunc
		sessionCtx, cancel = context.WithTimeout(ctx, config.SessionTimeout)
		defer cancel()
	}
	session, err := ios.NewConnector(config.AppiumURL, config.CommandTimeout).CreateSession(sessionCtx, caps)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Delete(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("failed to delete session")
		}
	}()

	raw, err := session.GetScreenshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to get screenshot: %w", err)
	}
	result, err := capture.Compress(raw, capture.DefaultOptions())
	if err != nil {
		return err
	}

	name := uuid.NewString()
	rawPath := filepath.Join(snapshotOut, name+".png")
	compressedPath := filepath.Join(snapshotOut, name+"-compressed.png")
	if err := os.WriteFile(rawPath, raw, 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(compressedPath, result.Data, 0o644); err != nil {
		return err
	}

	log.Info().Str("file", rawPath).Int("bytes", len(raw)).Msg("raw screenshot")
	log.Info().Str("file", compressedPath).Int("bytes", len(result.Data)).Int("colors", result.Colors).
		Int("width", result.Width).Int("height", result.Height).Msg("compressed screenshot")
	return nil
}

func runCompress(cmd *cobra.Command, args []string) error {
	input := args[0]
	raw, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(input, filepath.Ext(input))
	results := make(map[int]*capture.Result, len(compressColors))
	for _, colors := range lo.Uniq(compressColors) {
		result, err := capture.Compress(raw, capture.Options{Colors: colors, Dither: capture.Dither})
		if err != nil {
			return fmt.Errorf("%d colors: %w", colors, err)
		}
		output := fmt.Sprintf("%s-%dc.png", base, colors)
		if err := os.WriteFile(output, result.Data, 0o644); err != nil {
			return err
		}
		results[colors] = result
		log.Info().Str("file", output).Int("colors", colors).Int("bytes", len(result.Data)).
			Str("ratio", fmt.Sprintf("%.1f%%", 100*float64(len(result.Data))/float64(len(raw)))).Msg("compressed")
	}
	if len(results) == 0 {
		return fmt.Errorf("no palette sizes given")
	}

	best := lo.MinBy(lo.Keys(results), func(a, b int) bool {
		return len(results[a].Data) < len(results[b].Data)
	})
	log.Info().Int("colors", best).Int("bytes", len(results[best].Data)).Int("original_bytes", len(raw)).
		Msg("smallest configuration")
	return nil
}
