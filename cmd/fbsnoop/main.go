// Command fbsnoop replays framebuffer creation events through the
// capture pipeline and inspects the results: listing capture metadata,
// dumping raw linear pixel data, and detiling raw buffers offline.
package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	framebuffer "github.com/carbonvibes/Framebuffer"
)

var rootCmd = &cobra.Command{
	Use:   "fbsnoop",
	Short: "Capture and inspect framebuffer pixel content",
	Long: `fbsnoop drives the framebuffer capture pipeline from buffer
descriptors on disk, keeping a bounded history of captured frames with
their pixel content converted from vendor tiled layouts to linear
row-major order.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("verbose") {
			framebuffer.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/fbsnoop/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log pipeline activity to stderr")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("$HOME/.config/fbsnoop")
		viper.AddConfigPath(".")
	}

	viper.SetDefault("capture.capacity", framebuffer.DefaultCapacity)
	viper.SetDefault("capture.max_size", framebuffer.MaxCaptureSize)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FBSNOOP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Config file is optional.
	_ = viper.ReadInConfig()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
