package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/Iron-Ham/conclist/internal/collection"
	"github.com/Iron-Ham/conclist/internal/config"
	"github.com/Iron-Ham/conclist/internal/event"
	"github.com/Iron-Ham/conclist/internal/notify"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Show the event stream of an observable list",
	Long: `Run a short scripted session against an observable list of tasks and
print every event it publishes: adds, an insert, a replacement, a
replacement with the same task (which publishes nothing), a field change on
a contained task, removals and a reset.`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

// task is a demo item that reports changes to its done flag.
type task struct {
	notify.Properties
	name string
	done bool
}

func (t *task) String() string { return t.name }

func (t *task) complete() {
	t.done = true
	t.NotifyPropertyChanged("done")
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	out := cmd.OutOrStdout()
	p := newPalette(out, colorEnabled(cfg.Output.Color, out))

	list := collection.NewNotifying[*task](collection.WithLogger(logger))
	list.OnChange(func(e event.Event) {
		switch e := e.(type) {
		case event.CollectionChangedEvent[*task]:
			printCollectionEvent(out, p, e)
		case event.ItemChangedEvent[*task]:
			fmt.Fprintf(out, "  %s %s.%s\n", p.warning.Render(fmt.Sprintf("%-8s", "changed")), e.Item, e.Field)
		}
	})
	defer list.UnsubscribeAll()

	write, review, deploy, test := &task{name: "write"}, &task{name: "review"}, &task{name: "deploy"}, &task{name: "test"}

	steps := []struct {
		title string
		run   func() error
	}{
		{"Add write", func() error { return list.Add(write) }},
		{"Add deploy", func() error { return list.Add(deploy) }},
		{"Insert review at 1", func() error { return list.Insert(1, review) }},
		{"Set index 0 to test", func() error { return list.Set(0, test) }},
		{"Set index 0 to test again", func() error { return list.Set(0, test) }},
		{"Complete test", func() error { test.complete(); return nil }},
		{"Remove review", func() error { list.Remove(review); return nil }},
		{"Remove at 0", func() error { return list.RemoveAt(0) }},
		{"Clear", func() error { list.Clear(); return nil }},
	}

	fmt.Fprintln(out, p.title.Render("OBSERVABLE LIST DEMO"))
	for _, step := range steps {
		fmt.Fprintln(out, p.muted.Render("› "+step.title))
		if err := step.run(); err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s\n", p.muted.Render(formatTasks(list.Snapshot())))
	}

	fmt.Fprintf(out, "\n%s %d\n", p.label.Render("Listeners:"), list.ListenerCount())
	return nil
}

func printCollectionEvent(out io.Writer, p palette, e event.CollectionChangedEvent[*task]) {
	action := fmt.Sprintf("%-8s", e.Action)
	var detail string
	switch e.Action {
	case event.ActionAdd:
		detail = fmt.Sprintf("new=%s", formatTasks(e.NewItems))
	case event.ActionRemove:
		detail = fmt.Sprintf("old=%s", formatTasks(e.OldItems))
	case event.ActionReplace:
		detail = fmt.Sprintf("new=%s old=%s", formatTasks(e.NewItems), formatTasks(e.OldItems))
	}
	if e.Index != event.NoIndex {
		detail = strings.TrimSpace(fmt.Sprintf("%s index=%d", detail, e.Index))
	}
	fmt.Fprintf(out, "  %s %s\n", p.success.Render(action), detail)
}

func formatTasks(tasks []*task) string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.name
		if t.done {
			names[i] += "✓"
		}
	}
	return "[" + strings.Join(names, " ") + "]"
}
