package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"career-predictor/internal/career/form"
	"career-predictor/internal/career/notify"
	"career-predictor/internal/career/share"
	"career-predictor/internal/common/errors"
)

type predictOptions struct {
	values  map[form.Field]*string
	share   bool
	jsonOut bool
}

func newPredictCmd(root *rootOptions) *cobra.Command {
	opts := &predictOptions{values: make(map[form.Field]*string)}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run one prediction without the interactive form",
		Example: `  career-predictor predict --age 22 --cgpa 8.4 --risk 6 --leadership 7 \
    --networking 5 --tech 9 --finance 4 --siblings 1 --share`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, root, opts)
		},
	}

	for _, f := range form.Fields() {
		v := new(string)
		opts.values[f] = v
		usage := f.Label()
		if c, ok := form.ConstraintFor(f); ok {
			usage = fmt.Sprintf("%s (%g-%g)", f.Label(), c.Min, c.Max)
		}
		cmd.Flags().StringVar(v, string(f), "", usage)
	}
	cmd.Flags().BoolVar(&opts.share, "share", false, "share the prediction once it arrives")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the result as JSON")

	return cmd
}

type predictResult struct {
	SubmissionID string `json:"submissionId"`
	Prediction   string `json:"prediction"`
	DurationMs   int64  `json:"durationMs"`
	SharedVia    string `json:"sharedVia,omitempty"`
}

func runPredict(cmd *cobra.Command, root *rootOptions, opts *predictOptions) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx, cfg, root.logFile)
	if err != nil {
		return err
	}
	defer a.Close()

	stderr := cmd.ErrOrStderr()
	toast := notify.Func(func(n notify.Notification) {
		fmt.Fprintf(stderr, "[%s] %s\n", n.Level, n.Message)
	})

	ctrl, err := a.controller(toast, stderr)
	if err != nil {
		return err
	}
	for _, f := range form.Fields() {
		if err := ctrl.SetField(string(f), *opts.values[f]); err != nil {
			return err
		}
	}

	result, err := ctrl.Submit(ctx)
	// give the last cue a moment before the process exits
	cueCtx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	_ = ctrl.WaitEffects(cueCtx)
	cancel()
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeValidationFailed) {
			printFieldErrors(cmd, ctrl.Snapshot().Errors)
		}
		return err
	}

	out := predictResult{
		SubmissionID: result.SubmissionID,
		Prediction:   string(result.Label),
		DurationMs:   result.Duration.Milliseconds(),
	}

	if opts.share {
		var clip share.Clipboard
		if share.SupportsClipboard() {
			clip = share.SystemClipboard{}
		}
		outcome, err := a.shareAction(toast, clip).Share(ctx, out.Prediction)
		if err != nil {
			return err
		}
		out.SharedVia = string(outcome.Channel)
	}

	w := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	fmt.Fprintln(w, "Your Predicted Career!")
	fmt.Fprintf(w, "  %s\n", out.Prediction)
	return nil
}

func printFieldErrors(cmd *cobra.Command, errs form.Errors) {
	w := cmd.ErrOrStderr()
	for _, f := range form.Fields() {
		if msg, ok := errs[f]; ok {
			fmt.Fprintf(w, "  --%s: %s\n", f, msg)
		}
	}
	if msg, ok := errs[form.General]; ok {
		fmt.Fprintf(w, "  %s\n", msg)
	}
}
