package audits

import (
	"fmt"
	"strconv"

	"github.com/assettrack/assettrack/cmd/cli/config"
	"github.com/assettrack/assettrack/cmd/cli/output"
	"github.com/assettrack/assettrack/internal/models"
	"github.com/spf13/cobra"
)

// Init registers the audits command group on the root command.
func Init(rootCmd *cobra.Command) {
	auditsCmd := &cobra.Command{
		Use:   "audits",
		Short: "Run and inspect inventory audits",
	}
	auditsCmd.AddCommand(createCmd(), listCmd(), scanCmd(), closeCmd(), reportCmd())
	rootCmd.AddCommand(auditsCmd)
}

func createCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new audit",
		RunE: func(cmd *cobra.Command, args []string) error {
			var a models.Audit
			if err := config.Do("POST", "/v1/audits", map[string]string{"name": name}, &a); err != nil {
				return err
			}
			fmt.Printf("Audit %d (%s) opened\n", a.ID, a.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "audit name")
	cmd.MarkFlagRequired("name")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List audits, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out models.Page[models.Audit]
			if err := config.Do("GET", "/v1/audits", nil, &out); err != nil {
				return err
			}

			rows := make([][]any, 0, len(out.Items))
			for _, a := range out.Items {
				closed := ""
				if a.ClosedAt != nil {
					closed = a.ClosedAt.Format("2006-01-02 15:04")
				}
				rows = append(rows, []any{a.ID, a.Name, a.Status,
					a.StartedAt.Format("2006-01-02 15:04"), closed})
			}
			output.RenderTable([]string{"ID", "Name", "Status", "Started", "Closed"}, rows)
			return nil
		},
	}
}

func scanCmd() *cobra.Command {
	var itemID, locationID int
	var itemCode string

	cmd := &cobra.Command{
		Use:   "scan [audit-id]",
		Short: "Record an item scan in an audit",
		Long: "Record that an item was physically seen during an audit. Identify the item " +
			"by --item or --code; pass --location to record where it was found. Scanning " +
			"the same item twice returns the original scan.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{}
			if itemID != 0 {
				payload["item_id"] = itemID
			}
			if itemCode != "" {
				payload["item_code"] = itemCode
			}
			if locationID != 0 {
				payload["location_id"] = locationID
			}

			var scan models.AuditScan
			if err := config.Do("POST", "/v1/audits/"+args[0]+"/scan", payload, &scan); err != nil {
				return err
			}
			fmt.Printf("Scan %d recorded: item %d at %s\n",
				scan.ID, scan.ItemID, scan.ScannedAt.Format("15:04:05"))
			return nil
		},
	}

	cmd.Flags().IntVar(&itemID, "item", 0, "item id")
	cmd.Flags().StringVar(&itemCode, "code", "", "item code")
	cmd.Flags().IntVar(&locationID, "location", 0, "location the item was found at")
	return cmd
}

func closeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close [audit-id]",
		Short: "Close an open audit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var a models.Audit
			if err := config.Do("POST", "/v1/audits/"+args[0]+"/close", nil, &a); err != nil {
				return err
			}
			fmt.Printf("Audit %d closed\n", a.ID)
			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	var missingOnly bool

	cmd := &cobra.Command{
		Use:   "report [audit-id]",
		Short: "Show the reconciliation report for an audit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid audit id %q", args[0])
			}

			var report models.Report
			if err := config.Do("GET", fmt.Sprintf("/v1/audits/%d/report", id), nil, &report); err != nil {
				return err
			}

			fmt.Printf("Audit %d (%s): %d scanned / %d expected, %d missing, %d moved\n",
				report.Audit.ID, report.Audit.Name,
				report.ScannedCount, report.TotalItems, report.MissingCount, report.MovedCount)

			if missingOnly || report.MissingCount > 0 {
				rows := make([][]any, 0, len(report.MissingItems))
				for _, item := range report.MissingItems {
					rows = append(rows, []any{item.Code, item.Name})
				}
				fmt.Println("Missing items:")
				output.RenderTable([]string{"Code", "Name"}, rows)
			}
			if missingOnly {
				return nil
			}

			rows := make([][]any, 0, len(report.ScanDetails))
			for _, d := range report.ScanDetails {
				moved := ""
				if d.WasMoved {
					moved = "from " + d.FromLocationName
				}
				rows = append(rows, []any{d.Scan.ItemID,
					d.Scan.ScannedAt.Format("2006-01-02 15:04"), moved})
			}
			fmt.Println("Scans:")
			output.RenderTable([]string{"Item", "Scanned at", "Moved"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&missingOnly, "missing", false, "show only the missing items")
	return cmd
}
