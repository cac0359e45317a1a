package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Strob0t/lukthan/internal/domain/agent"
	"github.com/Strob0t/lukthan/internal/domain/event"
	"github.com/Strob0t/lukthan/internal/domain/history"
	"github.com/Strob0t/lukthan/internal/domain/message"
	"github.com/Strob0t/lukthan/internal/service"
)

// printResult writes an agent reply: a header naming the intent, the body
// and any suggestions.
func printResult(w io.Writer, res *agent.Result) {
	if res == nil {
		return
	}
	header := "[" + string(res.Intent) + "]"
	if score, ok := res.QualityScore(); ok {
		header += fmt.Sprintf(" quality %d/100", score)
		if res.Optimization.TaskType != "" {
			header += ", " + res.Optimization.TaskType
		}
	}
	if res.Domain != "" {
		header += " (" + res.Domain + ")"
	}
	fmt.Fprintln(w, header)

	if res.Response != "" {
		fmt.Fprintln(w, res.Response)
	}
	if res.Intent.HasOptimization() && res.Optimization != nil && res.Optimization.OptimizedPrompt != "" {
		if res.Response != "" {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, "--- optimized prompt ---")
		fmt.Fprintln(w, res.Optimization.OptimizedPrompt)
		fmt.Fprintln(w, "------------------------")
	}
	if topics := res.Metadata.KeyTopics(); len(topics) > 0 {
		fmt.Fprintln(w, "topics:", strings.Join(topics, ", "))
	}
	if msg := res.Metadata.Error(); msg != "" {
		fmt.Fprintln(w, "note:", msg)
	}
	for _, s := range res.Suggestions {
		fmt.Fprintln(w, "  > "+s)
	}
}

func printHistory(w io.Writer, page *history.Page) {
	if page == nil || len(page.Sessions) == 0 {
		fmt.Fprintln(w, "No history yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tDOMAIN\tSCORE\tPROMPT")
	for _, s := range page.Sessions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n",
			s.ID, s.CreatedAt.Format(time.DateTime), s.Domain, s.QualityScore, truncate(s.RawPrompt, 60))
	}
	_ = tw.Flush()
	if page.Total > len(page.Sessions) {
		fmt.Fprintf(w, "(%d of %d shown)\n", len(page.Sessions), page.Total)
	}
}

func printSession(w io.Writer, s *history.Session) {
	fmt.Fprintf(w, "Session %d  %s  %s/%s  score %d\n",
		s.ID, s.CreatedAt.Format(time.DateTime), s.Domain, s.TaskType, s.QualityScore)
	fmt.Fprintln(w, s.RawPrompt)
	for _, v := range s.Versions {
		label := v.Label
		if label == "" {
			label = fmt.Sprintf("version %d", v.ID)
		}
		fmt.Fprintf(w, "\n--- %s (%s) ---\n%s\n", label, v.CreatedAt.Format(time.DateTime), v.OptimizedPrompt)
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// renderer prints conversation events as they happen.
type renderer struct {
	out io.Writer
}

func (r *renderer) handle(e event.Event) {
	switch e.Type {
	case event.TypeMessageAppended:
		if e.Message != nil && e.Message.Role == message.RoleAgent && e.Message.Pending {
			fmt.Fprintln(r.out, "... "+service.ThinkingText)
		}
	case event.TypeMessageResolved:
		if e.Message != nil {
			fmt.Fprintln(r.out)
			printResult(r.out, e.Message.Result)
			fmt.Fprintln(r.out)
		}
	case event.TypeAttachmentChanged:
		if e.Attachment != nil {
			fmt.Fprintf(r.out, "attached: %s (%s)\n", e.Attachment.Name, e.Attachment.FileType)
		}
	case event.TypeVoiceStateChanged:
		fmt.Fprintln(r.out, "voice: "+e.VoiceState)
	case event.TypeLogCleared:
		fmt.Fprintln(r.out, "New chat started.")
	}
}
