package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	framebuffer "github.com/carbonvibes/Framebuffer"
	"github.com/carbonvibes/Framebuffer/source"
)

var replayCmd = &cobra.Command{
	Use:   "replay <dir>",
	Short: "Replay buffer descriptors through the capture pipeline",
	Long: `Replay reads *.json buffer descriptors from a directory, runs each
through the capture pipeline (extraction plus detiling), and prints the
capture history report. With --watch it keeps processing descriptors as
they appear until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().Bool("watch", false, "keep watching the directory for new descriptors")
	replayCmd.Flags().String("dump", "", "write the newest capture's pixels to this file (.png, .bmp, or raw)")
	replayCmd.Flags().Int("capacity", framebuffer.DefaultCapacity, "capture history slots")
	replayCmd.Flags().Int("max-size", framebuffer.MaxCaptureSize, "per-capture pixel buffer cap in bytes")
	_ = viper.BindPFlag("capture.capacity", replayCmd.Flags().Lookup("capacity"))
	_ = viper.BindPFlag("capture.max_size", replayCmd.Flags().Lookup("max-size"))
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	store := framebuffer.NewStore(
		framebuffer.WithCapacity(viper.GetInt("capture.capacity")),
		framebuffer.WithMaxCaptureSize(viper.GetInt("capture.max_size")),
	)
	defer store.Close()

	replay := source.NewReplay(args[0], store.OnBufferCreated)

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := replay.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	} else if err := replay.ProcessAll(); err != nil {
		return err
	}

	if err := store.WriteReport(cmd.OutOrStdout()); err != nil {
		return err
	}

	if dump, _ := cmd.Flags().GetString("dump"); dump != "" {
		return dumpNewest(store, dump)
	}
	return nil
}

// dumpNewest writes the newest pixel-bearing capture to path. The
// extension picks the encoding; anything but .png/.bmp gets the raw
// linear bytes.
func dumpNewest(store *framebuffer.Store, path string) error {
	frames := store.Frames()
	var newest *framebuffer.Capture
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].HasPixelData {
			newest = &frames[i]
			break
		}
	}
	if newest == nil {
		return framebuffer.ErrNoData
	}

	data, err := store.ReadRaw(0, newest.BufferSize)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = framebuffer.SavePNG(path, framebuffer.ToImage(data, newest.Width, newest.Height))
	case ".bmp":
		err = framebuffer.SaveBMP(path, framebuffer.ToImage(data, newest.Width, newest.Height))
	default:
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %d bytes (%dx%d %s) to %s\n",
		len(data), newest.Width, newest.Height, newest.Format, path)
	return nil
}
