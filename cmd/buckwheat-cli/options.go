package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/idlab-discover/buckwheat-cli/internal/apperr"
	"github.com/idlab-discover/buckwheat-cli/internal/batch"
	"github.com/idlab-discover/buckwheat-cli/internal/ui"
)

var optionsFormat string

// optionsCmd represents the options command
var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the accepted values for season, RH method, moisture and packing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		format := strings.ToLower(strings.TrimSpace(viper.GetString("options.format")))
		switch format {
		case "", "text":
			printOptions(cmd.OutOrStdout(), cat)
			return nil
		case "yaml":
			return writeOptionsYAML(cmd.OutOrStdout(), cat)
		default:
			return apperr.Userf("invalid --format %q (expected text|yaml)", format)
		}
	},
}

type optionSet struct {
	Seasons   []string `yaml:"seasons"`
	RHMethods []string `yaml:"rh_methods"`
	Days      string   `yaml:"days_not_known"`
	Moisture  []string `yaml:"moisture"`
	Packing   []string `yaml:"packing"`
}

func rhMethodNames() []string {
	return []string{batch.RHNumericEntry.String(), batch.RHSeasonalLookup.String()}
}

func printOptions(w io.Writer, cat batch.Catalog) {
	section := func(title string, values []string) {
		fmt.Fprintln(w, ui.SectionHeader.Render(title))
		for _, v := range values {
			fmt.Fprintf(w, "  %s %s\n", ui.GetBullet(), v)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, ui.Title.Render("Accepted batch values"))
	fmt.Fprintln(w)
	section("Seasons (--season, --rh-season)", batch.SeasonNames())
	section("RH methods (--rh-method)", []string{
		batch.RHNumericEntry.String() + ui.Dim.Render("  "+batch.RHNumericEntry.Label()),
		batch.RHSeasonalLookup.String() + ui.Dim.Render("  "+batch.RHSeasonalLookup.Label()),
	})
	section("Moisture (--moisture)", cat.Moisture)
	section("Packing (--packing)", cat.Packing)
	fmt.Fprintln(w, ui.Dim.Render("--days takes a number of days or "+batch.DaysNotKnown))
}

func writeOptionsYAML(w io.Writer, cat batch.Catalog) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(optionSet{
		Seasons:   batch.SeasonNames(),
		RHMethods: rhMethodNames(),
		Days:      batch.DaysNotKnown,
		Moisture:  cat.Moisture,
		Packing:   cat.Packing,
	}); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	optionsCmd.Flags().StringVarP(&optionsFormat, "format", "f", "", "Output format: text|yaml")
	viper.BindPFlag("options.format", optionsCmd.Flags().Lookup("format"))
}
