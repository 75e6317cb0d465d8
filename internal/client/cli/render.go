package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/todoclient/internal/client/models"
	"github.com/dmitrijs2005/todoclient/internal/client/services"
)

func formatList(l models.List) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s", l.ID, l.Name)
	if l.Tasks != nil {
		fmt.Fprintf(&b, "  (%d/%d done)", l.CompletedCount(), len(l.Tasks))
	}
	if l.Description != "" {
		b.WriteString(" - " + l.Description)
	}
	return b.String()
}

func formatTask(t models.Task, now time.Time) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s  %s  (%s", mark, t.ID, t.Title, t.EffectivePriority())
	if t.DueDate != "" {
		b.WriteString(", due " + t.DueDate)
	}
	if t.IsOverdue(now) {
		b.WriteString(", overdue")
	}
	b.WriteString(")")
	return b.String()
}

func printTasks(tasks []models.Task, hideCompleted bool, now time.Time) {
	shown := 0
	for _, t := range tasks {
		if hideCompleted && t.Completed {
			continue
		}
		printlnFn("  " + formatTask(t, now))
		if t.Description != "" {
			printlnFn("      " + strings.ReplaceAll(t.Description, "\n", "\n      "))
		}
		shown++
	}
	switch {
	case shown == 0 && len(tasks) > 0:
		printlnFn("  All tasks are completed (hidden by preferences).")
	case shown == 0:
		printlnFn("  No tasks.")
	}
}

func printStats(st services.Stats) {
	printlnFn(fmt.Sprintf("Lists: %d  Tasks: %d  Completed: %d  Pending: %d",
		st.TotalLists, st.TotalTasks, st.CompletedTasks, st.PendingTasks))
}
