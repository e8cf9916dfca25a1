package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/buckwheat-cli/internal/composer"
	"github.com/idlab-discover/buckwheat-cli/internal/form"
	bwio "github.com/idlab-discover/buckwheat-cli/internal/io"
	"github.com/idlab-discover/buckwheat-cli/internal/ui"
)

var (
	payloadOutput string
	payloadFormat string
)

// payloadCmd represents the payload command
var payloadCmd = &cobra.Command{
	Use:   "payload",
	Short: "Validate a batch and print the request payload without sending it",
	Long: `Run the same validation and composition as 'predict' and write the JSON
(or YAML) body that would be POSTed to the prediction endpoint. Nothing is sent.`,
	RunE: runPayload,
}

func runPayload(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	values, err := fieldValues("payload")
	if err != nil {
		return err
	}

	surface := form.NewSurface()
	if err := form.NewController(surface).Apply(values); err != nil {
		return err
	}
	p, err := composer.New(surface, nil, composer.WithCatalog(cat)).Compose()
	if err != nil {
		return err
	}

	output := strings.TrimSpace(viper.GetString("payload.output"))
	format := viper.GetString("payload.format")
	if output == "" {
		actual, err := bwio.ResolveFormat("", format)
		if err != nil {
			return err
		}
		return bwio.EncodePayload(cmd.OutOrStdout(), p, actual)
	}

	if err := bwio.WritePayload(p, output, format); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.FormatStatus("success", "Payload written to "+ui.Highlight.Render(output)))
	return nil
}

func init() {
	addFieldFlags(payloadCmd, "payload")
	payloadCmd.Flags().StringVarP(&payloadOutput, "output", "o", "", "Output file path (default: stdout)")
	payloadCmd.Flags().StringVarP(&payloadFormat, "format", "f", "", "Output format: json|yaml|auto")

	viper.BindPFlag("payload.output", payloadCmd.Flags().Lookup("output"))
	viper.BindPFlag("payload.format", payloadCmd.Flags().Lookup("format"))
}
