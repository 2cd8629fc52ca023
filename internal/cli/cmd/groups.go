package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billsplit/backend/internal/cli/client"
	"github.com/billsplit/backend/internal/cli/output"
)

var (
	flagMine        bool
	flagDescription string
	flagForce       bool
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage groups",
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups you belong to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		path := "/groups"
		if flagMine {
			path = "/groups/my"
		}
		var resp client.Response[client.GroupList]
		if err := apiClient.Get(path, &resp); err != nil {
			return fmt.Errorf("listing groups: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.GroupTable(resp.Data.Groups)
		return nil
	},
}

var groupsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		body := map[string]any{"name": args[0]}
		if flagDescription != "" {
			body["description"] = flagDescription
		}
		var resp client.Response[client.Group]
		if err := apiClient.Post("/groups", body, &resp); err != nil {
			return fmt.Errorf("creating group: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		fmt.Fprintf(output.Out, "Created group %q (%s)\n", resp.Data.Name, resp.Data.ID)
		return nil
	},
}

var groupsShowCmd = &cobra.Command{
	Use:   "show <group-id>",
	Short: "Show group details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp client.Response[client.Group]
		if err := apiClient.Get("/groups/"+args[0], &resp); err != nil {
			return fmt.Errorf("fetching group: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.GroupDetail(resp.Data)
		return nil
	},
}

var groupsDeleteCmd = &cobra.Command{
	Use:   "delete <group-id>",
	Short: "Delete a group with all of its bills",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		if !flagForce && !confirm(fmt.Sprintf("Delete group %s and all of its bills? This cannot be undone.", args[0])) {
			fmt.Fprintln(output.Out, "Cancelled.")
			return nil
		}

		if err := apiClient.Delete("/groups/"+args[0], nil); err != nil {
			return fmt.Errorf("deleting group: %w", err)
		}
		fmt.Fprintf(output.Out, "Deleted group %s\n", args[0])
		return nil
	},
}

func init() {
	groupsListCmd.Flags().BoolVar(&flagMine, "mine", false, "Only groups you created")
	groupsCreateCmd.Flags().StringVar(&flagDescription, "description", "", "Group description")
	groupsDeleteCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Skip confirmation prompt")

	groupsCmd.AddCommand(groupsListCmd, groupsCreateCmd, groupsShowCmd, groupsDeleteCmd)
	rootCmd.AddCommand(groupsCmd)
}

func confirm(prompt string) bool {
	fmt.Fprintf(output.Out, "%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}
