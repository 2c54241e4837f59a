package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
)

const resumeUsage = "Usage: resume list | add [file.md] | show <id> | section <id> <title> | delete <id>"

func (a *App) findResume(ctx context.Context, prefix string) (models.Resume, error) {
	rs, err := a.resumes.List(ctx)
	if err != nil {
		return models.Resume{}, err
	}
	ids := make([]string, len(rs))
	for i, r := range rs {
		ids[i] = r.ID
	}
	id, err := matchID(ids, prefix)
	if err != nil {
		return models.Resume{}, err
	}
	return a.resumes.Get(ctx, id)
}

// Resumes dispatches the resume subcommands.
func (a *App) Resumes(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch sub, rest := args[0], args[1:]; {
	case sub == "list":
		return a.listResumes(ctx)
	case sub == "add" && len(rest) <= 1:
		return a.addResume(ctx, rest)
	case sub == "show" && len(rest) == 1:
		r, err := a.findResume(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, r.Markdown())
		return nil
	case sub == "section" && len(rest) >= 2:
		return a.setResumeSection(ctx, rest[0], strings.Join(rest[1:], " "))
	case (sub == "delete" || sub == "rm") && len(rest) == 1:
		r, err := a.findResume(ctx, rest[0])
		if err != nil {
			return err
		}
		if err := a.resumes.Delete(ctx, r.ID); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Resume %q deleted.\n", r.Name)
		return nil
	default:
		fmt.Fprintln(a.out, resumeUsage)
		return nil
	}
}

func (a *App) listResumes(ctx context.Context) error {
	rs, err := a.resumes.List(ctx)
	if err != nil {
		return err
	}
	if len(rs) == 0 {
		fmt.Fprintln(a.out, "No resumes yet. Use 'resume add'.")
		return nil
	}
	for _, r := range rs {
		line := fmt.Sprintf("[%s] %s", shortID(r.ID), r.Name)
		if len(r.Tags) > 0 {
			line += " (" + strings.Join(r.Tags, ", ") + ")"
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}

// addResume takes content from a markdown file when one is given.
func (a *App) addResume(ctx context.Context, args []string) error {
	var content, defaultName string
	if len(args) == 1 {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		content = string(b)
		defaultName = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	}

	prompt := "Resume name"
	if defaultName != "" {
		prompt += fmt.Sprintf(" [%s]", defaultName)
	}
	name, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if name == "" {
		name = defaultName
	}
	tags, err := GetList(a.reader, "Tags", a.out)
	if err != nil {
		return err
	}
	if content == "" {
		if content, err = GetMultiline(a.reader, "Resume content (markdown)", a.out); err != nil {
			return err
		}
	}

	r, err := a.resumes.Add(ctx, name, tags, content)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Resume %s saved.\n", shortID(r.ID))
	return nil
}

func (a *App) setResumeSection(ctx context.Context, prefix, title string) error {
	r, err := a.findResume(ctx, prefix)
	if err != nil {
		return err
	}
	body, err := GetMultiline(a.reader, fmt.Sprintf("Section %q", title), a.out)
	if err != nil {
		return err
	}
	if _, err := a.resumes.SetSection(ctx, r.ID, title, body); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Section saved.")
	return nil
}

const prepUsage = "Usage: prep list [category] | add | delete <id>"

// Prep dispatches the question bank subcommands.
func (a *App) Prep(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch sub, rest := args[0], args[1:]; {
	case sub == "list":
		return a.listPrep(ctx, strings.Join(rest, " "))
	case sub == "add":
		return a.addPrep(ctx)
	case (sub == "delete" || sub == "rm") && len(rest) == 1:
		return a.deletePrep(ctx, rest[0])
	default:
		fmt.Fprintln(a.out, prepUsage)
		return nil
	}
}

func (a *App) listPrep(ctx context.Context, category string) error {
	qs, err := a.prep.List(ctx, category)
	if err != nil {
		return err
	}
	if len(qs) == 0 {
		fmt.Fprintln(a.out, "No prep questions. Use 'prep add'.")
		return nil
	}
	for _, q := range qs {
		fmt.Fprintf(a.out, "[%s] %s: %s\n", shortID(q.ID), q.Category, strings.Join(q.Questions, " / "))
		if q.Answer != "" {
			fmt.Fprintf(a.out, "  %s\n", strings.ReplaceAll(q.Answer, "\n", "\n  "))
		}
		if len(q.Sources) > 0 {
			fmt.Fprintf(a.out, "  Sources: %s\n", strings.Join(q.Sources, ", "))
		}
	}
	return nil
}

func (a *App) addPrep(ctx context.Context) error {
	names := make([]string, len(models.PrepCategories))
	for i, c := range models.PrepCategories {
		names[i] = string(c)
	}
	category, err := GetSimpleText(a.reader, "Category ("+strings.Join(names, ", ")+")", a.out)
	if err != nil {
		return err
	}
	questions, err := GetMultiline(a.reader, "Question phrasings, one per line", a.out)
	if err != nil {
		return err
	}
	answer, err := GetMultiline(a.reader, "Prepared answer", a.out)
	if err != nil {
		return err
	}
	sources, err := GetList(a.reader, "Sources (companies or links)", a.out)
	if err != nil {
		return err
	}

	q, err := a.prep.Add(ctx, category, strings.Split(questions, "\n"), answer, sources)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Question %s saved.\n", shortID(q.ID))
	return nil
}

func (a *App) deletePrep(ctx context.Context, prefix string) error {
	qs, err := a.prep.List(ctx, "")
	if err != nil {
		return err
	}
	ids := make([]string, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	id, err := matchID(ids, prefix)
	if err != nil {
		return err
	}
	if err := a.prep.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Question deleted.")
	return nil
}

const toolboxUsage = "Usage: toolbox list [type] | add <type> | remove <type> <number>"

// Toolbox dispatches the snippet subcommands. Item numbers shown by list
// start at 1.
func (a *App) Toolbox(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch sub, rest := args[0], args[1:]; {
	case sub == "list" && len(rest) <= 1:
		return a.listToolbox(ctx, rest)
	case sub == "add" && len(rest) == 1:
		snippet, err := GetMultiline(a.reader, "Snippet", a.out)
		if err != nil {
			return err
		}
		if err := a.toolbox.Add(ctx, rest[0], snippet); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Snippet saved.")
		return nil
	case (sub == "remove" || sub == "rm") && len(rest) == 2:
		n, err := strconv.Atoi(rest[1])
		if err != nil {
			fmt.Fprintln(a.out, toolboxUsage)
			return nil
		}
		if err := a.toolbox.Remove(ctx, rest[0], n-1); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Snippet removed.")
		return nil
	default:
		fmt.Fprintln(a.out, toolboxUsage)
		return nil
	}
}

func (a *App) listToolbox(ctx context.Context, filter []string) error {
	all, err := a.toolbox.All(ctx)
	if err != nil {
		return err
	}
	types := models.ItemTypes
	if len(filter) == 1 {
		it, err := models.ParseItemType(filter[0])
		if err != nil {
			return err
		}
		types = []models.ItemType{it}
	}
	for _, t := range types {
		items := all[t]
		fmt.Fprintf(a.out, "%s (%d)\n", t, len(items))
		for i, s := range items {
			fmt.Fprintf(a.out, "  %d. %s\n", i+1, strings.ReplaceAll(s, "\n", "\n     "))
		}
	}
	return nil
}
