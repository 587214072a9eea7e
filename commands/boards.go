package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CrowderSoup/kanban/database"
	"github.com/CrowderSoup/kanban/services"
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List or create boards for a user",
}

var boardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's boards, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("user")

		client, closeClient, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		defer closeClient()

		user, err := services.NewUserService(client).FindUser(cmd.Context(), email)
		if errors.Is(err, database.ErrNoRows) {
			fmt.Fprintln(cmd.OutOrStdout(), "No boards found")
			return nil
		}
		if err != nil {
			return err
		}
		boards, err := services.NewBoardService(client).GetBoards(cmd.Context(), user.ID)
		if err != nil {
			return err
		}
		if len(boards) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No boards found")
			return nil
		}
		for _, b := range boards {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-30s %s  %s\n", b.ID, b.Title, b.Color, b.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var boardsCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a board with its starter columns",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("user")
		color, _ := cmd.Flags().GetString("color")
		description, _ := cmd.Flags().GetString("description")
		columns, _ := cmd.Flags().GetStringSlice("columns")

		client, closeClient, err := openClient(cmd.Context())
		if err != nil {
			return err
		}
		defer closeClient()

		user, err := services.NewUserService(client).EnsureUser(cmd.Context(), email)
		if err != nil {
			return err
		}
		created, err := services.NewBoardDataService(client).CreateBoardWithDefaultColumns(cmd.Context(), services.NewBoardInput{
			Title:       strings.Join(args, " "),
			Description: description,
			Color:       color,
			UserID:      user.ID,
			Columns:     columns,
		})
		if err != nil {
			return err
		}

		titles := make([]string, len(created.Columns))
		for i, c := range created.Columns {
			titles[i] = c.Title
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created board %s: %s\n", created.Board.ID, created.Board.Title)
		fmt.Fprintf(cmd.OutOrStdout(), "  Color: %s\n", created.Board.Color)
		fmt.Fprintf(cmd.OutOrStdout(), "  Columns: %s\n", strings.Join(titles, ", "))
		return nil
	},
}

func init() {
	boardsCmd.PersistentFlags().String("user", "", "email of the board owner")
	_ = boardsCmd.MarkPersistentFlagRequired("user")

	boardsCreateCmd.Flags().String("color", "", "board color (default bg-blue-500)")
	boardsCreateCmd.Flags().String("description", "", "board description")
	boardsCreateCmd.Flags().StringSlice("columns", nil, "starter columns (default To Do, In Progress, Done)")

	boardsCmd.AddCommand(boardsListCmd)
	boardsCmd.AddCommand(boardsCreateCmd)
}
