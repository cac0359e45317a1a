package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Strob0t/lukthan/internal/service"
)

// advanceTimeout bounds how long the wizard waits for a debounced advance.
const advanceTimeout = 5 * time.Second

// runWizard walks the guided questionnaire on in/out and submits the
// synthesized prompt. Entering "q" abandons it, "b" goes back a step.
func runWizard(ctx context.Context, s *service.Session, in <-chan string, out io.Writer) error {
	w := s.Wizard
	w.Reset()
	for {
		v := w.View()
		fmt.Fprintf(out, "\n%s - step %d of %d (%d%%)\n", v.Title, v.Step, v.Total, v.Percent)

		if v.Current == nil {
			if len(v.Selections) > 0 {
				fmt.Fprintln(out, "Selected:", strings.Join(v.Selections, ", "))
			}
			fmt.Fprintln(out, "Describe your requirements (b = back, q = quit):")
			line, ok := nextLine(ctx, in, out)
			if !ok {
				return nil
			}
			switch strings.ToLower(line) {
			case "q":
				w.Reset()
				return nil
			case "b":
				w.Back()
				continue
			}
			w.SetDescription(line)
			if !w.View().CanSubmit {
				fmt.Fprintln(out, "A description is required.")
				continue
			}
			_, err := w.Submit(ctx)
			return err
		}

		fmt.Fprintln(out, v.Current.Question)
		for i, o := range v.Current.Options {
			mark := " "
			if o.ID == v.Answer {
				mark = "*"
			}
			fmt.Fprintf(out, " %s %d) %s\n", mark, i+1, o.Label)
		}
		if v.Step > 1 {
			fmt.Fprintln(out, "Choose a number (b = back, q = quit):")
		} else {
			fmt.Fprintln(out, "Choose a number (q = quit):")
		}

		line, ok := nextLine(ctx, in, out)
		if !ok {
			return nil
		}
		switch strings.ToLower(line) {
		case "q":
			w.Reset()
			return nil
		case "b":
			w.Back()
			continue
		}
		id, err := optionID(v, line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		if err := w.Select(id); err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		waitForAdvance(ctx, w, v.Step)
	}
}

// optionID resolves a 1-based number or an option ID on the current step.
func optionID(v service.WizardView, input string) (string, error) {
	opts := v.Current.Options
	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(opts) {
			return "", fmt.Errorf("choose a number between 1 and %d", len(opts))
		}
		return opts[n-1].ID, nil
	}
	for _, o := range opts {
		if strings.EqualFold(o.ID, input) || strings.EqualFold(o.Label, input) {
			return o.ID, nil
		}
	}
	return "", fmt.Errorf("unknown option %q", input)
}

// waitForAdvance blocks until the wizard leaves step or the wait times out.
func waitForAdvance(ctx context.Context, w *service.WizardService, step int) {
	deadline := time.NewTimer(advanceTimeout)
	defer deadline.Stop()
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for w.View().Step == step {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-tick.C:
		}
	}
}

func nextLine(ctx context.Context, in <-chan string, out io.Writer) (string, bool) {
	fmt.Fprint(out, "wizard> ")
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-in:
		return strings.TrimSpace(line), ok
	}
}
