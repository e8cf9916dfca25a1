package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/buckwheat-cli/internal/apperr"
	"github.com/idlab-discover/buckwheat-cli/internal/batch"
	"github.com/idlab-discover/buckwheat-cli/internal/composer"
	"github.com/idlab-discover/buckwheat-cli/internal/form"
	bwio "github.com/idlab-discover/buckwheat-cli/internal/io"
	"github.com/idlab-discover/buckwheat-cli/internal/predictor"
)

// fieldFlag maps a command-line flag to its place in form.Values.
type fieldFlag struct {
	name  string
	usage string
	set   func(v *form.Values, s string)
}

var fieldFlags = []fieldFlag{
	{"temperature", "Storage temperature in °C", func(v *form.Values, s string) { v.Temperature = s }},
	{"rh-method", "How relative humidity is provided: numeric|seasonal", func(v *form.Values, s string) { v.RHMethod = s }},
	{"rh", "Measured relative humidity in percent (numeric method)", func(v *form.Values, s string) { v.RHValue = s }},
	{"rh-season", "Season to look RH up by (seasonal method)", func(v *form.Values, s string) { v.RHSeason = s }},
	{"days", "Days passed after milling, or " + batch.DaysNotKnown, func(v *form.Values, s string) { v.DaysSinceMilling = s }},
	{"season", "Season: " + strings.Join(batch.SeasonNames(), "|"), func(v *form.Values, s string) { v.Season = s }},
	{"moisture", "Moisture band (see 'options')", func(v *form.Values, s string) { v.Moisture = s }},
	{"packing", "Packing type (see 'options')", func(v *form.Values, s string) { v.Packing = s }},
}

// addFieldFlags registers the batch field flags plus --input/--input-format
// on cmd and binds them to viper under "<prefix>.<flag>".
func addFieldFlags(cmd *cobra.Command, prefix string) {
	for _, f := range fieldFlags {
		cmd.Flags().String(f.name, "", f.usage)
		viper.BindPFlag(prefix+"."+f.name, cmd.Flags().Lookup(f.name))
	}
	cmd.Flags().StringP("input", "i", "", "Batch file (JSON or YAML) with the field values")
	cmd.Flags().String("input-format", "", "Batch file format: json|yaml|auto")
	viper.BindPFlag(prefix+".input", cmd.Flags().Lookup("input"))
	viper.BindPFlag(prefix+".input-format", cmd.Flags().Lookup("input-format"))
}

// fieldValues reads the batch file, if any, and lays the field flags over it.
func fieldValues(prefix string) (form.Values, error) {
	var v form.Values
	if in := strings.TrimSpace(viper.GetString(prefix + ".input")); in != "" {
		read, err := bwio.ReadValues(in, viper.GetString(prefix+".input-format"))
		if err != nil {
			return form.Values{}, fmt.Errorf("failed to read batch file: %w", err)
		}
		v = read
	}
	for _, f := range fieldFlags {
		if s := strings.TrimSpace(viper.GetString(prefix + "." + f.name)); s != "" {
			f.set(&v, s)
		}
	}
	return v, nil
}

// loadCatalog returns the moisture and packing sets, from catalog.file if set.
func loadCatalog() (batch.Catalog, error) {
	path := strings.TrimSpace(viper.GetString("catalog.file"))
	if path == "" {
		return batch.DefaultCatalog(), nil
	}
	cat, err := batch.LoadCatalog(path)
	if err != nil {
		return batch.Catalog{}, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

// endpointOptions resolves the endpoint.* settings.
func endpointOptions() (predictor.Options, error) {
	mode, err := predictor.ParseMode(viper.GetString("endpoint.mode"))
	if err != nil {
		return predictor.Options{}, err
	}
	sec := viper.GetInt("endpoint.timeout")
	if sec < 0 {
		return predictor.Options{}, apperr.Userf("invalid --timeout %d (must be >= 0)", sec)
	}
	return predictor.Options{
		Mode:    mode,
		URL:     strings.TrimSpace(viper.GetString("endpoint.url")),
		Timeout: time.Duration(sec) * time.Second,
		Token:   viper.GetString("endpoint.token"),
	}, nil
}

// resolveLogLevel reads key and checks it against quiet|standard|debug.
func resolveLogLevel(key string) (string, error) {
	level := strings.ToLower(strings.TrimSpace(viper.GetString(key)))
	if level == "" {
		level = "standard"
	}
	switch level {
	case "quiet", "standard", "debug":
		return level, nil
	default:
		return "", apperr.Userf("invalid --log-level %q (expected quiet|standard|debug)", level)
	}
}

// wireLoggers enables package logging for the given level.
func wireLoggers(w io.Writer, level string) {
	if level != "debug" {
		return
	}
	composer.SetLogger(w)
	predictor.SetLogger(w)
	form.SetLogger(w)
}
