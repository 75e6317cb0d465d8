package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todoclient/internal/client/config"
	"github.com/dmitrijs2005/todoclient/internal/client/models"
)

// usageError is printed as-is, without the "Error:" prefix.
type usageError string

func (e usageError) Error() string { return "Usage: " + string(e) }

func idArg(args []string, usage string) (models.ID, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", usageError(usage)
	}
	return models.ID(args[0]), nil
}

func (a *App) Lists(ctx context.Context) error {
	lists, err := a.todoService.ListsWithTasks(ctx)
	if err != nil {
		return err
	}
	if len(lists) == 0 {
		printlnFn("No lists yet. Create one with 'newlist'.")
		return nil
	}
	for _, l := range lists {
		printlnFn(formatList(l))
	}
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := idArg(args, "show <list-id>")
	if err != nil {
		return err
	}
	l, err := a.todoService.List(ctx, id)
	if err != nil {
		return err
	}
	printlnFn(formatList(*l))
	printTasks(l.Tasks, a.prefsService.Preferences(ctx).HideCompleted, a.now())
	return nil
}

func (a *App) NewList(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "List name", a.out)
	if err != nil {
		return err
	}
	desc, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}
	l, err := a.todoService.CreateList(ctx, name, desc)
	if err != nil {
		return err
	}
	printlnFn(config.MsgListCreated, "ID:", l.ID.String())
	return nil
}

func (a *App) RenameList(ctx context.Context, args []string) error {
	id, err := idArg(args, "renamelist <list-id>")
	if err != nil {
		return err
	}
	cur, err := a.todoService.List(ctx, id)
	if err != nil {
		return err
	}
	name, _, err := getOptional(a.reader, "List name", cur.Name, a.out)
	if err != nil {
		return err
	}
	desc, _, err := getOptional(a.reader, "Description", cur.Description, a.out)
	if err != nil {
		return err
	}
	if _, err := a.todoService.UpdateList(ctx, id, name, desc); err != nil {
		return err
	}
	printlnFn(config.MsgListUpdated)
	return nil
}

func (a *App) DeleteList(ctx context.Context, args []string) error {
	id, err := idArg(args, "dellist <list-id>")
	if err != nil {
		return err
	}
	ok, err := Confirm(a.reader, fmt.Sprintf("Delete list %s and all of its tasks?", id), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.todoService.DeleteList(ctx, id); err != nil {
		return err
	}
	printlnFn(config.MsgListDeleted)
	return nil
}

// Tasks prints every task, or the tasks of one list when an id is given.
func (a *App) Tasks(ctx context.Context, args []string) error {
	var listID models.ID
	if len(args) > 0 {
		listID = models.ID(args[0])
	}
	tasks, err := a.todoService.Tasks(ctx, listID)
	if err != nil {
		return err
	}
	printTasks(tasks, a.prefsService.Preferences(ctx).HideCompleted, a.now())
	return nil
}

func (a *App) AddTask(ctx context.Context, args []string) error {
	listID, err := idArg(args, "addtask <list-id>")
	if err != nil {
		return err
	}
	in := models.TaskInput{ListID: listID}

	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	in.Title = &title

	desc, err := GetMultiline(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}
	if desc != "" {
		in.Description = &desc
	}

	def := a.prefsService.Preferences(ctx).DefaultPriority
	prio, _, err := getOptional(a.reader, "Priority (low, medium, high)", string(def), a.out)
	if err != nil {
		return err
	}
	p := models.Priority(prio)
	in.Priority = &p

	due, err := getSimpleText(a.reader, "Due date YYYY-MM-DD (optional)", a.out)
	if err != nil {
		return err
	}
	if due != "" {
		in.DueDate = &due
	}

	t, err := a.todoService.AddTask(ctx, in)
	if err != nil {
		return err
	}
	printlnFn(config.MsgTaskCreated, "ID:", t.ID.String())
	return nil
}

// EditTask prompts for every editable field, showing the current value.
// Fields left unchanged are not sent.
func (a *App) EditTask(ctx context.Context, args []string) error {
	id, err := idArg(args, "edittask <task-id>")
	if err != nil {
		return err
	}
	cur, err := a.todoService.Task(ctx, id)
	if err != nil {
		return err
	}

	var in models.TaskInput
	title, changed, err := getOptional(a.reader, "Title", cur.Title, a.out)
	if err != nil {
		return err
	}
	if changed {
		in.Title = &title
	}
	desc, changed, err := getOptional(a.reader, "Description ('-' clears it)", cur.Description, a.out)
	if err != nil {
		return err
	}
	if changed {
		if desc == "-" {
			desc = ""
		}
		in.Description = &desc
	}
	prio, changed, err := getOptional(a.reader, "Priority", string(cur.EffectivePriority()), a.out)
	if err != nil {
		return err
	}
	if changed {
		p := models.Priority(prio)
		in.Priority = &p
	}
	due, changed, err := getOptional(a.reader, "Due date YYYY-MM-DD", cur.DueDate, a.out)
	if err != nil {
		return err
	}
	if changed {
		in.DueDate = &due
	}

	if in == (models.TaskInput{}) {
		printlnFn("Nothing to update.")
		return nil
	}
	if _, err := a.todoService.EditTask(ctx, id, in); err != nil {
		return err
	}
	printlnFn(config.MsgTaskUpdated)
	return nil
}

func (a *App) Complete(ctx context.Context, args []string) error {
	return a.setCompleted(ctx, args, true)
}

func (a *App) Reopen(ctx context.Context, args []string) error {
	return a.setCompleted(ctx, args, false)
}

func (a *App) setCompleted(ctx context.Context, args []string, done bool) error {
	usage, msg := "undo <task-id>", config.MsgTaskIncompleted
	if done {
		usage, msg = "done <task-id>", config.MsgTaskCompleted
	}
	id, err := idArg(args, usage)
	if err != nil {
		return err
	}
	if _, err := a.todoService.SetCompleted(ctx, id, done); err != nil {
		return err
	}
	printlnFn(msg)
	return nil
}

func (a *App) DeleteTask(ctx context.Context, args []string) error {
	id, err := idArg(args, "deltask <task-id>")
	if err != nil {
		return err
	}
	ok, err := Confirm(a.reader, fmt.Sprintf("Delete task %s?", id), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.todoService.DeleteTask(ctx, id); err != nil {
		return err
	}
	printlnFn(config.MsgTaskDeleted)
	return nil
}
