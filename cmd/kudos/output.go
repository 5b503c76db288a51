package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/thep200/github-kudos/api"
	"github.com/thep200/github-kudos/internal/model"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"

	descriptionWidth = 60
)

// render writes v as json or yaml. Tables are handled per type.
func (a *app) render(v interface{}) error {
	switch a.output {
	case outputYAML:
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func (a *app) renderRepos(views []api.RepoView) error {
	if a.output != outputTable {
		return a.render(views)
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KUDO\tID\tREPOSITORY\tLANGUAGE\tSTARS\tDESCRIPTION")
	for _, v := range views {
		mark := ""
		if v.Kudo {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\t%s\n", mark, v.ID, v.FullName, v.Language,
			v.StargazersCount, model.TruncateString(v.Description, descriptionWidth))
	}
	return w.Flush()
}

func (a *app) renderKudos(kudos []model.Kudo) error {
	if a.output != outputTable {
		return a.render(kudos)
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREPOSITORY\tLANGUAGE\tNOTES")
	for _, k := range kudos {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", k.RepoID, k.RepoName, k.Language,
			model.TruncateString(k.Notes, descriptionWidth))
	}
	return w.Flush()
}
