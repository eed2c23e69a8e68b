package upscalectl

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// buildRootCmdWith constructs the command tree wired to the fn* actions.
// --server falls back to UPSCALECTL_SERVER, then the built-in default.
func buildRootCmdWith(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("UPSCALECTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "upscalectl",
		Short:         "Client for the upscaled image upscaling API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("server", cfg.Server, "Base URL of the upscaled server (defaults UPSCALECTL_SERVER)")
	root.PersistentFlags().Duration("timeout", cfg.Timeout, "Overall request timeout, 0 for none")
	_ = v.BindPFlag("server", root.PersistentFlags().Lookup("server"))
	_ = v.BindPFlag("timeout", root.PersistentFlags().Lookup("timeout"))
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if s := v.GetString("server"); s != "" {
			cfg.Server = s
		}
		cfg.Timeout = v.GetDuration("timeout")
	}

	var output, model string
	upscaleCmd := &cobra.Command{
		Use:     "upscale <image>",
		Short:   "Upload an image and save the upscaled PNG",
		Example: "  upscalectl upscale cat.jpg -o cat_x4.png\n  upscalectl upscale cat.jpg -m RealESRGAN_x2plus.pth",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fnUpscale(cfg, args[0], model, output)
		},
	}
	upscaleCmd.Flags().StringVarP(&output, "output", "o", "", "Output path (defaults to the server-provided filename)")
	upscaleCmd.Flags().StringVarP(&model, "model", "m", "", "Model id from 'upscalectl models' (defaults to the server default)")

	statusCmd := &cobra.Command{Use: "status", Short: "Show server status", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error { return fnStatus(cfg) }}
	modelsCmd := &cobra.Command{Use: "models", Short: "List available models", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error { return fnModels(cfg) }}
	healthCmd := &cobra.Command{Use: "health", Aliases: []string{"ready"}, Short: "Check server readiness", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error { return fnHealth(cfg) }}

	root.AddCommand(upscaleCmd, statusCmd, modelsCmd, healthCmd)
	return root
}
