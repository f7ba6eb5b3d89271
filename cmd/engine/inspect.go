package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"mlengine/internal/intelligence"
	"mlengine/internal/intelligence/memorystore"
	"mlengine/internal/intelligence/schema"
	"mlengine/internal/intelligence/snapshot"

	"github.com/gocarina/gocsv"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	statsFormat   string
	sectorsFormat string
	anomalySector string
	anomalyLimit  int
)

var quiet = map[string]string{"quiet": "true"}

// hydrateOnce loads a snapshot without the search index.
func hydrateOnce(ctx context.Context) (*intelligence.Service, error) {
	loader, err := snapshot.NewLoader(cfg, log)
	if err != nil {
		return nil, err
	}
	if pg, ok := loader.Source.(*snapshot.PostgresSource); ok {
		defer pg.Close()
	}

	svc := intelligence.New(loader, memorystore.NewStore(), nil, log)
	if _, err := svc.Hydrate(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

func printJSON(w io.Writer, v any) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(body))
	return err
}

func writeStatsText(w io.Writer, stats schema.GlobalStats) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "Tickers indexed:   %d\n", stats.TotalIndexed)
	p.Fprintf(w, "Anomalies:         %d\n", stats.Anomalies)
	p.Fprintf(w, "24h drift:         %d\n", stats.Drift24h)
	if stats.SyncState != "" {
		p.Fprintf(w, "Sync state:        %s\n", stats.SyncState)
	}
	if stats.LastUpdated != nil {
		p.Fprintf(w, "Last updated:      %s\n", stats.LastUpdated.UTC().Format(time.RFC3339))
	}
}

var statsCmd = &cobra.Command{
	Use:         "stats",
	Short:       "Print platform-wide statistics",
	Annotations: quiet,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := hydrateOnce(cmd.Context())
		if err != nil {
			return err
		}

		stats := svc.GlobalStats()
		switch statsFormat {
		case "json":
			return printJSON(cmd.OutOrStdout(), stats)
		case "text":
			writeStatsText(cmd.OutOrStdout(), stats)
			return nil
		default:
			return fmt.Errorf("unknown format %q", statsFormat)
		}
	},
}

var sectorsCmd = &cobra.Command{
	Use:         "sectors",
	Short:       "Print anomaly density per sector",
	Annotations: quiet,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := hydrateOnce(cmd.Context())
		if err != nil {
			return err
		}

		sectors := svc.SectorAnalysis()
		switch sectorsFormat {
		case "json":
			return printJSON(cmd.OutOrStdout(), sectors)
		case "csv":
			return gocsv.Marshal(&sectors, cmd.OutOrStdout())
		default:
			return fmt.Errorf("unknown format %q", sectorsFormat)
		}
	},
}

var researchCmd = &cobra.Command{
	Use:         "research TICKER",
	Short:       "Print the research record and ESG trend of one ticker",
	Args:        cobra.ExactArgs(1),
	Annotations: quiet,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := hydrateOnce(cmd.Context())
		if err != nil {
			return err
		}

		result, ok := svc.TickerDetails(args[0])
		if !ok {
			return fmt.Errorf("ticker '%s' not found in the GreenScale institutional universe", args[0])
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

var anomaliesCmd = &cobra.Command{
	Use:         "anomalies",
	Short:       "List governance anomalies",
	Annotations: quiet,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := hydrateOnce(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), svc.Anomalies(anomalySector, anomalyLimit))
	},
}

func init() {
	rootCmd.AddCommand(statsCmd, sectorsCmd, researchCmd, anomaliesCmd)

	statsCmd.Flags().StringVarP(&statsFormat, "format", "f", "text", "output format: json or text")
	sectorsCmd.Flags().StringVarP(&sectorsFormat, "format", "f", "json", "output format: json or csv")
	anomaliesCmd.Flags().StringVar(&anomalySector, "sector", "", "restrict to one sector")
	anomaliesCmd.Flags().IntVar(&anomalyLimit, "limit", 20, "maximum anomalies to list")
}
