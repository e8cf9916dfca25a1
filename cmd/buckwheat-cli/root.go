package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/buckwheat-cli/internal/predictor"
	"github.com/idlab-discover/buckwheat-cli/internal/ui"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "buckwheat-cli",
	Short: "Shelf-life prediction for buckwheat grain batches",
	Long:  longDescription,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initUIAndBanner(cmd)
	},

	// When invoked without a subcommand, show help (with banner) instead of
	// printing a plain usage output.
	RunE: func(cmd *cobra.Command, args []string) error {
		initUIAndBanner(cmd)
		return cmd.Help()
	},
}

var (
	cfgFile string
	version string

	endpointURL     string
	endpointTimeout int
	endpointToken   string
	endpointMode    string
	catalogFile     string
)

// SetVersion sets the version for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// GetRootCmd returns the root command for use with fang
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.buckwheat-cli.yaml or ./config/defaults.yaml)")
	rootCmd.PersistentFlags().StringVar(&endpointURL, "endpoint", "", "Prediction endpoint URL (default "+predictor.DefaultURL+")")
	rootCmd.PersistentFlags().IntVar(&endpointTimeout, "timeout", 0, "HTTP timeout in seconds for the prediction request (0 = none)")
	rootCmd.PersistentFlags().StringVar(&endpointToken, "token", "", "Bearer token for the prediction endpoint")
	rootCmd.PersistentFlags().StringVar(&endpointMode, "mode", "", "Prediction mode: online|dummy")
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "YAML file with the moisture and packing options")

	viper.BindPFlag("endpoint.url", rootCmd.PersistentFlags().Lookup("endpoint"))
	viper.BindPFlag("endpoint.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("endpoint.token", rootCmd.PersistentFlags().Lookup("token"))
	viper.BindPFlag("endpoint.mode", rootCmd.PersistentFlags().Lookup("mode"))
	viper.BindPFlag("catalog.file", rootCmd.PersistentFlags().Lookup("catalog"))

	// Ensure `--help` (and help subcommands) show the banner consistently.
	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		initUIAndBanner(cmd)
		defaultHelp(cmd, args)
	})

	rootCmd.AddCommand(predictCmd, payloadCmd, optionsCmd)
}

func initConfig() {
	// Environment variables override the config file, e.g.
	// endpoint.token -> BUCKWHEAT_ENDPOINT_TOKEN
	viper.SetEnvPrefix("BUCKWHEAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	var err error
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		err = viper.ReadInConfig()
	} else {
		home, herr := os.UserHomeDir()
		cobra.CheckErr(herr)

		viper.SetConfigType("yaml")
		viper.AddConfigPath(home)
		viper.AddConfigPath("./config")

		// Try .buckwheat-cli first, then defaults.yaml
		viper.SetConfigName(".buckwheat-cli")
		err = viper.ReadInConfig()
		if errors.As(err, &viper.ConfigFileNotFoundError{}) {
			viper.SetConfigName("defaults")
			err = viper.ReadInConfig()
		}
	}

	notFound := &viper.ConfigFileNotFoundError{}
	switch {
	case err != nil && !errors.As(err, notFound):
		cobra.CheckErr(err)
	case err != nil:
		// The config file is optional.
	default:
		configMsg := ui.Dim.Render("Using config file: ") + ui.Secondary.Render(viper.ConfigFileUsed())
		fmt.Fprintln(os.Stderr, configMsg)
	}
}

const longDescription = "Predicts the shelf life and free fatty acid content of a stored buckwheat batch from its storage temperature, relative humidity, age, season, moisture and packing."

func initUIAndBanner(cmd *cobra.Command) {
	if cmd == nil {
		return
	}
	cmd.Root().Long = ui.RenderGradientBanner(ui.BannerASCII) + "\n" + longDescription
}
