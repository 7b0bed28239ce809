package commands

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/go-mindcare-client/auth"
	"github.com/jrsteele09/go-mindcare-client/backend"
	"github.com/jrsteele09/go-mindcare-client/crisis"
	"github.com/spf13/cobra"
)

// newCrisisCommand needs no session
func newCrisisCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "crisis",
		Aliases: []string{"help-now"},
		Args:    cobra.NoArgs,
		Short:   "Show helplines you can call right now",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "If you are in immediate danger, call your local emergency number.")
			for _, h := range crisis.Helplines() {
				fmt.Fprintf(out, "\n%s\n  %s\n  Phone: %s\n  %s\n", h.Name, h.Description, h.Phone, h.Link)
			}
			return nil
		},
	}
}

func (c *cli) newTherapistsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "therapists",
		Args:  cobra.NoArgs,
		Short: "List therapists",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.session(cmd, true)
			if err != nil {
				return err
			}
			therapists, err := app.Backend.ListTherapists(cmd.Context())
			if err != nil {
				return errors.New(auth.UserMessage(err))
			}
			if len(therapists) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No therapists found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCREDENTIALS\tLOCATION\tSPECIALTIES\tTELEHEALTH")
			for _, t := range therapists {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.Name, t.Credentials, t.Location, strings.Join(t.Specialties, ", "), yesNo(t.Telehealth))
			}
			return w.Flush()
		},
	}
}

func (c *cli) newResourcesCommand() *cobra.Command {
	var query backend.ResourceQuery
	var listCategories bool

	cmd := &cobra.Command{
		Use:   "resources",
		Args:  cobra.NoArgs,
		Short: "Browse the resource library",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.session(cmd, true)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if listCategories {
				categories, err := app.Backend.ResourceCategories(cmd.Context())
				if err != nil {
					return errors.New(auth.UserMessage(err))
				}
				for _, category := range categories {
					fmt.Fprintln(out, category)
				}
				return nil
			}

			resources, err := app.Backend.ListResources(cmd.Context(), query)
			if err != nil {
				return errors.New(auth.UserMessage(err))
			}
			if len(resources) == 0 {
				fmt.Fprintln(out, "No resources found")
				return nil
			}
			for _, r := range resources {
				fmt.Fprintf(out, "%s [%s, %s]\n  %s\n  %s\n", r.Title, r.Category, r.Type, r.Description, r.URL)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query.Search, "search", "s", "", "text to look for in titles and descriptions")
	cmd.Flags().StringVarP(&query.Category, "category", "c", "", "only this category")
	cmd.Flags().IntVarP(&query.Limit, "limit", "l", 50, "most resources to show")
	cmd.Flags().BoolVar(&listCategories, "categories", false, "list the categories instead")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
