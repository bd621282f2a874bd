package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/carbonvibes/Framebuffer/tiling"
)

var detileCmd = &cobra.Command{
	Use:   "detile <in.raw> <out.raw>",
	Short: "Convert a raw tiled framebuffer dump to linear layout",
	Long: `Detile converts a raw Intel X/Y/Yf-tiled framebuffer dump to linear
row-major layout, 4 bytes per pixel. The input is height*pitch bytes of
tiled data; the output is height*width*4 bytes of linear data.`,
	Args: cobra.ExactArgs(2),
	RunE: runDetile,
}

var (
	detileWidth  uint32
	detileHeight uint32
	detilePitch  uint32
	detileMode   string
)

func init() {
	detileCmd.Flags().Uint32Var(&detileWidth, "width", 0, "width in pixels")
	detileCmd.Flags().Uint32Var(&detileHeight, "height", 0, "height in pixels")
	detileCmd.Flags().Uint32Var(&detilePitch, "pitch", 0, "source row stride in bytes")
	detileCmd.Flags().StringVar(&detileMode, "tiling", "X", "tile layout: X, Y, or Yf")
	_ = detileCmd.MarkFlagRequired("width")
	_ = detileCmd.MarkFlagRequired("height")
	_ = detileCmd.MarkFlagRequired("pitch")
	rootCmd.AddCommand(detileCmd)
}

func parseMode(s string) (tiling.Mode, error) {
	switch s {
	case "X", "x":
		return tiling.X, nil
	case "Y", "y":
		return tiling.Y, nil
	case "Yf", "yf", "YF":
		return tiling.Yf, nil
	default:
		return tiling.None, fmt.Errorf("unknown tiling %q (want X, Y, or Yf)", s)
	}
}

func runDetile(cmd *cobra.Command, args []string) error {
	mode, err := parseMode(detileMode)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	if want := int(detileHeight) * int(detilePitch); len(src) < want {
		fmt.Fprintf(os.Stderr, "warning: %s is %d bytes, expected %d; missing tail reads as black\n",
			args[0], len(src), want)
	}

	dst := make([]byte, int(detileHeight)*int(detileWidth)*4)
	if err := tiling.Convert(dst, src, detileWidth, detileHeight, detilePitch, mode); err != nil {
		return err
	}
	return os.WriteFile(args[1], dst, 0o644)
}
