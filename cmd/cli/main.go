package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"pillartwo/adapters/excel"
	"pillartwo/domain/dashboard"
	"pillartwo/domain/rules"
	"pillartwo/domain/validation"
	"pillartwo/internal/config"
	"pillartwo/internal/container"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pillartwo",
		Short:         "Pillar Two rules engine: validation, anomaly flags and GIR reporting",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newSummaryCmd(),
		newEntitiesCmd(),
		newValidateCmd(),
		newGIRCmd(),
		newReferenceCmd(),
		newProfileCmd(),
		newExportCmd(),
		newInspectCmd(),
	)
	return rootCmd
}

// boot loads configuration from the environment and runs the bulk
// classification pass.
func boot(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print roster-wide summary statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := boot(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c.Store.SummaryStatistics())
		},
	}
}

func newEntitiesCmd() *cobra.Command {
	var region string
	var below bool

	cmd := &cobra.Command{
		Use:   "entities",
		Short: "List entities with their classification",
		Long: `List entities of the roster, optionally restricted to one region and to
entities below the minimum rate.

Example: pillartwo entities --region apac --below`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := boot(cmd.Context())
			if err != nil {
				return err
			}
			filters := dashboard.Filters{Region: region, ETR: dashboard.BandAll}
			if below {
				filters.ETR = dashboard.BandBelow
			}
			state, err := c.Dashboard.ApplyFilters(filters)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), state.Entities)
		},
	}

	cmd.Flags().StringVar(&region, "region", rules.RegionAll, "Region filter: all|emea|apac|americas")
	cmd.Flags().BoolVar(&below, "below", false, "Only entities below the minimum rate")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var entityID int
	var all bool

	cmd := &cobra.Command{
		Use:   "validate [type]",
		Short: "Validate a calculation for one entity or the whole roster",
		Long: `Recompute a calculation and compare it to the reported figure.

Types: etr, sbie, topup, safeharbor, adjustments. Without --entity the
demonstration entity is used.

Example: pillartwo validate topup --entity 23
         pillartwo validate etr --all`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calcType, err := validation.ParseCalculationType(args[0])
			if err != nil {
				return err
			}
			c, err := boot(cmd.Context())
			if err != nil {
				return err
			}
			if all {
				report, err := c.Validation.ValidateRoster(cmd.Context(), calcType)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			}
			result, err := c.Validation.ValidateEntity(calcType, entityID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().IntVar(&entityID, "entity", 0, "Entity id (0 selects the demonstration entity)")
	cmd.Flags().BoolVar(&all, "all", false, "Validate every entity of the roster")
	return cmd
}

func newGIRCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gir",
		Short: "Print the GloBE Information Return rows per jurisdiction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := boot(cmd.Context())
			if err != nil {
				return err
			}
			view, err := c.Dashboard.View(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), view.GIR)
		},
	}
}

func newReferenceCmd() *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "reference [type]",
		Short: "Show the OECD Model Rules reference for a calculation type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := boot(cmd.Context())
			if err != nil {
				return err
			}
			ref, _ := c.Rulebook.Reference(args[0])
			if markdown {
				fmt.Fprint(cmd.OutOrStdout(), ref.Markdown())
				return nil
			}
			return printJSON(cmd.OutOrStdout(), ref)
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print the reference as markdown")
	return cmd
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Profile the ETR distribution against the minimum rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := boot(cmd.Context())
			if err != nil {
				return err
			}
			profile, err := c.Dashboard.ETRProfile()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), profile)
		},
	}
}

func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the dashboard view as an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := boot(cmd.Context())
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(c.Config.Export.Dir, "pillar-two-report.xlsx")
			}
			view, err := c.Dashboard.View(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := c.Exporter.Export(f, view); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entities to %s\n", len(view.Entities), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output path (default: $EXPORT_DIR/pillar-two-report.xlsx)")
	return cmd
}

// sheetSummary is one worksheet of an inspected workbook.
type sheetSummary struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	Rows    int      `json:"rows"`
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file]",
		Short: "Read back an exported workbook and list its sheets",
		Long: `Open an xlsx workbook written by export and print each sheet with its
header row and data row count.

Example: pillartwo inspect pillar-two-report.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			sheets, err := excel.ReadWorkbook(f)
			if err != nil {
				return err
			}
			out := make([]sheetSummary, 0, len(sheets))
			for name, sheet := range sheets {
				out = append(out, sheetSummary{Name: name, Headers: sheet.Headers, Rows: len(sheet.Rows)})
			}
			sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}
