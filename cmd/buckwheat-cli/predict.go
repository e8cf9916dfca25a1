package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/buckwheat-cli/internal/apperr"
	"github.com/idlab-discover/buckwheat-cli/internal/batch"
	"github.com/idlab-discover/buckwheat-cli/internal/composer"
	"github.com/idlab-discover/buckwheat-cli/internal/form"
	"github.com/idlab-discover/buckwheat-cli/internal/predictor"
	"github.com/idlab-discover/buckwheat-cli/internal/ui"
)

var (
	predictLogLevel    string
	predictInteractive bool
)

// predictCmd represents the predict command
var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict shelf life and free fatty acids for a batch",
	Long: `Validate the batch fields, send them to the prediction endpoint and show
the predicted shelf life and free fatty acid content.

Fields come from flags, a batch file (--input) or an interactive form
(--interactive). Flags override values from the batch file; in interactive
mode they prefill the form.`,
	Example: `  buckwheat-cli predict --temperature 25 --rh 60 --days 30 --season Summer --moisture "< 12%" --packing "Open to air"
  buckwheat-cli predict --rh-method seasonal --rh-season Winter --days not_known ...
  buckwheat-cli predict --input batch.yaml
  buckwheat-cli predict --interactive`,
	RunE: runPredict,
}

func runPredict(cmd *cobra.Command, args []string) error {
	level, err := resolveLogLevel("predict.log-level")
	if err != nil {
		return err
	}
	wireLoggers(cmd.ErrOrStderr(), level)

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	opts, err := endpointOptions()
	if err != nil {
		return err
	}
	values, err := fieldValues("predict")
	if err != nil {
		return err
	}

	s := newPredictSession(cmd.OutOrStdout(), cmd.ErrOrStderr(), level, cat, predictor.New(opts))
	s.dummy = opts.Mode == predictor.ModeDummy

	if err := s.controller.Apply(values); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if viper.GetBool("predict.interactive") {
		return s.interactive(ctx)
	}

	outcome, err := s.submit(ctx)
	if err != nil {
		return err
	}
	if outcome.Failed() {
		if apperr.IsUser(outcome.Err) {
			return outcome.Err
		}
		return fmt.Errorf("prediction failed: %w", outcome.Err)
	}
	return nil
}

type predictSession struct {
	status  io.Writer
	results *ui.ResultUI
	plain   bool
	quiet   bool
	dummy   bool

	surface    *form.Surface
	controller *form.Controller
	composer   *composer.Composer
	catalog    batch.Catalog
}

func newPredictSession(out, status io.Writer, level string, cat batch.Catalog, p predictor.Predictor) *predictSession {
	s := &predictSession{
		status:  status,
		results: ui.NewResultUI(out, level == "quiet"),
		plain:   level == "quiet" || !ui.IsTerminal(out),
		quiet:   level == "quiet",
		surface: form.NewSurface(),
		catalog: cat,
	}
	s.controller = form.NewController(s.surface)
	s.composer = composer.New(s.surface, p, composer.WithCatalog(cat))
	return s
}

// interactive loops form → submit → next action until the user quits.
// Validation alerts send the user straight back to the form, and so does
// abandoning a pending request with esc.
func (s *predictSession) interactive(ctx context.Context) error {
	s.surface.OnAlert = s.results.PrintAlert
	for {
		if err := form.RunInteractive(ctx, s.controller, s.catalog); err != nil {
			return err
		}
		outcome, err := s.submit(ctx)
		if errors.Is(err, apperr.ErrCancelled) {
			s.results.PrintAlert("Request abandoned; its response will be ignored.")
			continue
		}
		if err != nil {
			return err
		}
		if apperr.IsUser(outcome.Err) {
			continue
		}

		action, err := form.AskNext(ctx)
		if err != nil {
			return err
		}
		switch action {
		case form.ActionQuit:
			return nil
		case form.ActionClear:
			s.controller.Clear()
		}
	}
}

// submit validates on the calling goroutine, then waits for the response
// behind the pending spinner and prints the resolved panel. Validation
// failures leave the panel untouched. When the wait is interrupted the panel
// is reset before the request is cancelled, so its late answer is discarded.
func (s *predictSession) submit(ctx context.Context) (composer.Outcome, error) {
	reqCtx, cancelReq := context.WithCancel(ctx)
	defer cancelReq()

	pending, err := s.composer.SubmitAsync(reqCtx)
	if err != nil {
		return composer.Outcome{Err: err}, nil
	}
	if s.dummy && !s.quiet {
		fmt.Fprintln(s.status, ui.FormatStatus("info", "Using dummy mode (no API calls)"))
	}

	var outcome composer.Outcome
	err = ui.RunPending(ctx, s.status, form.PendingText, func(ctx context.Context) error {
		select {
		case outcome = <-pending:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil {
		s.surface.Result.Reset()
		return outcome, err
	}
	if outcome.Stale {
		return outcome, nil
	}

	report := resultReport(s.surface.Result.View())
	if s.plain {
		s.results.PrintPlain(report)
	} else {
		s.results.PrintReport(report)
	}
	return outcome, nil
}

func resultReport(v form.ResultView) ui.ResultReport {
	state := ui.ResultIdle
	switch v.State {
	case form.StatePending:
		state = ui.ResultPending
	case form.StateSuccess:
		state = ui.ResultSuccess
	case form.StateFailed:
		state = ui.ResultFailed
	}
	return ui.ResultReport{
		State:     state,
		Heading:   v.Heading,
		Lines:     v.Lines,
		RequestID: v.RequestID,
		Elapsed:   v.Elapsed,
	}
}

func init() {
	addFieldFlags(predictCmd, "predict")
	predictCmd.Flags().StringVar(&predictLogLevel, "log-level", "", "Log level: quiet|standard|debug")
	predictCmd.Flags().BoolVar(&predictInteractive, "interactive", false, "Fill in the batch fields in an interactive form")

	viper.BindPFlag("predict.log-level", predictCmd.Flags().Lookup("log-level"))
	viper.BindPFlag("predict.interactive", predictCmd.Flags().Lookup("interactive"))
}
