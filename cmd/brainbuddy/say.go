package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/PabloGalante/brainbuddy/internal/app/assistant"
	"github.com/PabloGalante/brainbuddy/internal/domain"
)

var sayCmd = &cobra.Command{
	Use:   `say "<transcript>"`,
	Short: "Run one interpretation cycle for a transcript",
	Long: `Runs one interpretation cycle as if the words had just been spoken,
then prints the reply and the resulting task list.`,
	Args: cobra.ArbitraryArgs,
	RunE: runSay,
}

// consoleSpeaker prints replies instead of playing them.
type consoleSpeaker struct {
	out io.Writer
}

func (s consoleSpeaker) Speak(ctx context.Context, text string) {
	replyStyle := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(s.out, "%s %s\n", replyStyle("BrainBuddy:"), text)
}

func runSay(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	a, err := newApp(cmd.Context(), assistant.WithSpeaker(consoleSpeaker{out: out}))
	if err != nil {
		return err
	}
	defer a.close()

	transcript := strings.Join(args, " ")
	res, err := a.assistant.Handle(cmd.Context(), transcript)
	if errors.Is(err, domain.ErrEmptyTranscript) {
		consoleSpeaker{out: out}.Speak(cmd.Context(), assistant.ReplyNoSpeech)
		return nil
	}
	if err != nil {
		return err
	}

	if len(res.Added)+len(res.Modified) == 0 {
		return nil
	}

	tasks, err := a.assistant.ListTasks(cmd.Context(), false)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	renderTasks(out, tasks, changedIDs(res))
	return nil
}

func changedIDs(res *assistant.Result) map[domain.TaskID]bool {
	ids := make(map[domain.TaskID]bool, len(res.Added)+len(res.Modified))
	for _, t := range res.Added {
		ids[t.ID] = true
	}
	for _, t := range res.Modified {
		ids[t.ID] = true
	}
	return ids
}
