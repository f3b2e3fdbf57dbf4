package items

import (
	"fmt"
	"net/url"

	"github.com/assettrack/assettrack/cmd/cli/config"
	"github.com/assettrack/assettrack/cmd/cli/output"
	"github.com/assettrack/assettrack/internal/models"
	"github.com/spf13/cobra"
)

// Init registers the items command group on the root command.
func Init(rootCmd *cobra.Command) {
	itemsCmd := &cobra.Command{
		Use:   "items",
		Short: "Manage inventory items",
	}
	itemsCmd.AddCommand(listCmd(), createCmd(), moveCmd(), historyCmd())
	rootCmd.AddCommand(itemsCmd)
}

func listCmd() *cobra.Command {
	var search, category string
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active items",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("page", fmt.Sprint(page))
			if search != "" {
				q.Set("search", search)
			}
			if category != "" {
				q.Set("category", category)
			}

			var out models.Page[models.Item]
			if err := config.Do("GET", "/v1/items?"+q.Encode(), nil, &out); err != nil {
				return err
			}

			rows := make([][]any, 0, len(out.Items))
			for _, item := range out.Items {
				rows = append(rows, []any{item.ID, item.Code, item.Name, item.Category, item.SerialNumber})
			}
			output.RenderTable([]string{"ID", "Code", "Name", "Category", "Serial"}, rows)
			fmt.Printf("Page %d of %d (%d items)\n", out.Page, out.Pages, out.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "filter by name, code or serial number")
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func createCmd() *cobra.Command {
	var code, name, category, serial string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an item",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{
				"code":          code,
				"name":          name,
				"category":      category,
				"serial_number": serial,
			}
			var item models.Item
			if err := config.Do("POST", "/v1/items", payload, &item); err != nil {
				return err
			}
			fmt.Printf("Created item %d (%s)\n", item.ID, item.Code)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "unique item code")
	cmd.Flags().StringVar(&name, "name", "", "item name")
	cmd.Flags().StringVar(&category, "category", "", "category")
	cmd.Flags().StringVar(&serial, "serial", "", "serial number")
	cmd.MarkFlagRequired("code")
	cmd.MarkFlagRequired("name")
	return cmd
}

func moveCmd() *cobra.Command {
	var locationID int
	var note string

	cmd := &cobra.Command{
		Use:   "move [item-id]",
		Short: "Move an item to a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{
				"location_id": locationID,
				"note":        note,
			}
			var a models.Assignment
			if err := config.Do("POST", "/v1/items/"+args[0]+"/move", payload, &a); err != nil {
				return err
			}
			fmt.Printf("Item %d moved to location %d\n", a.ItemID, a.LocationID)
			return nil
		},
	}

	cmd.Flags().IntVar(&locationID, "location", 0, "target location id")
	cmd.Flags().StringVar(&note, "note", "", "optional note")
	cmd.MarkFlagRequired("location")
	return cmd
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [item-id]",
		Short: "Show an item's relocation history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out []models.Assignment
			if err := config.Do("GET", "/v1/items/"+args[0]+"/history", nil, &out); err != nil {
				return err
			}

			rows := make([][]any, 0, len(out))
			for _, a := range out {
				rows = append(rows, []any{a.LocationID, a.Note, a.AssignedAt.Format("2006-01-02 15:04")})
			}
			output.RenderTable([]string{"Location", "Note", "When"}, rows)
			return nil
		},
	}
}
