package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	viewFilters filterFlags
	viewDesc    string
)

var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "Manage saved filter views",
}

var viewsSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the filter flags under a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := viewFilters.spec(cmd)
		if err != nil {
			return err
		}
		store, err := openViews()
		if err != nil {
			return err
		}
		v, err := store.Save(args[0], viewDesc, spec)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved view '%s' (%s): %s\n", v.Name, v.ID, v.Filter.Describe())
		return nil
	},
}

var viewsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved views",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openViews()
		if err != nil {
			return err
		}
		list := store.List()
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved views")
			return nil
		}
		t := tablewriter.NewWriter(cmd.OutOrStdout())
		t.SetHeader([]string{"Name", "Filter", "Updated"})
		t.SetAutoWrapText(false)
		for _, v := range list {
			t.Append([]string{v.Name, v.Filter.Describe(), v.UpdatedAt.Format("2006-01-02 15:04")})
		}
		t.Render()
		return nil
	},
}

var viewsShowCmd = &cobra.Command{
	Use:   "show <name|id>",
	Short: "Show a saved view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := lookupView(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Name: %s\n", v.Name)
		fmt.Fprintf(out, "ID: %s\n", v.ID)
		if v.Description != "" {
			fmt.Fprintf(out, "Description: %s\n", v.Description)
		}
		fmt.Fprintf(out, "Filter: %s\n", v.Filter.Describe())
		fmt.Fprintf(out, "Created: %s\n", v.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Updated: %s\n", v.UpdatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var viewsDeleteCmd = &cobra.Command{
	Use:     "delete <name|id>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved view",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openViews()
		if err != nil {
			return err
		}
		if err := store.Remove(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted view '%s'\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewsCmd)
	viewsCmd.AddCommand(viewsSaveCmd, viewsListCmd, viewsShowCmd, viewsDeleteCmd)
	viewFilters.register(viewsSaveCmd, false)
	viewsSaveCmd.Flags().StringVarP(&viewDesc, "description", "d", "", "short description of the view")
}
