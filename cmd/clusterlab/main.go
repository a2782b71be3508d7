package main

import (
	"fmt"
	"os"
	"strings"

	"clusterlab/adapters/render"
	"clusterlab/adapters/tabio"
	"clusterlab/domain/cluster"
	"clusterlab/domain/table"
	"clusterlab/internal"
	"clusterlab/internal/analysis"
	"clusterlab/internal/config"
	"clusterlab/internal/preprocess"
	"clusterlab/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Optional .env for LOG_LEVEL and the CLUSTERLAB_* defaults.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "clusterlab",
		Short: "Exploratory clustering of country-level statistical indicators",
	}
	rootCmd.AddCommand(newCleanCmd(cfg), newAnalyzeCmd(cfg))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCleanCmd(cfg *config.Config) *cobra.Command {
	var (
		fields       []string
		keyField     string
		nameField    string
		rowThreshold float64
		colThreshold float64
		impute       bool
		neighbors    int
	)

	cmd := &cobra.Command{
		Use:   "clean <input> <output>",
		Short: "Load a raw indicator table, prune sparse rows/columns and export it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := internal.NewDefaultLogger()
			opts := tabio.DefaultOptions()
			if keyField != "" {
				opts.KeyField = keyField
			}
			if nameField != "" {
				opts.NameField = nameField
			}

			p := preprocess.New(opts, logger)
			if _, err := p.Load(args[0], fields); err != nil {
				return err
			}
			if _, removed, err := p.DropSparse(table.Columns, colThreshold); err != nil {
				return err
			} else if len(removed) > 0 {
				logger.Info("removed sparse columns: %s", strings.Join(removed, ", "))
			}
			if _, removed, err := p.DropSparse(table.Rows, rowThreshold); err != nil {
				return err
			} else if len(removed) > 0 {
				logger.Info("removed sparse rows: %s", strings.Join(removed, ", "))
			}
			if impute && neighbors > 0 {
				if _, err := p.ImputeNearestNeighbor(neighbors); err != nil {
					return err
				}
				return p.Export(args[1], false)
			}
			return p.Export(args[1], impute)
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", nil, "numeric fields to keep (default: all)")
	cmd.Flags().StringVar(&keyField, "key-field", cfg.Input.KeyField, "entity identifier column (default: Country Code)")
	cmd.Flags().StringVar(&nameField, "name-field", cfg.Input.NameField, "display-name column (default: Country Name)")
	cmd.Flags().Float64Var(&rowThreshold, "row-threshold", cfg.Clean.RowThreshold, "drop rows with a higher missing fraction")
	cmd.Flags().Float64Var(&colThreshold, "col-threshold", cfg.Clean.ColumnThreshold, "drop columns with a higher missing fraction")
	cmd.Flags().BoolVar(&impute, "impute", true, "fill remaining gaps by nearest-neighbor imputation")
	cmd.Flags().IntVar(&neighbors, "neighbors", cfg.Clean.Neighbors, "neighbor count for imputation")
	return cmd
}

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	var (
		chartDir     string
		reportPath   string
		onComponents int
		kmeansK      int
		sweepMax     int
		gmComponents int
		bicMax       int
		hierMethod   string
		hierMetric   string
		threshold    float64
		minDense     int
	)

	cmd := &cobra.Command{
		Use:   "analyze <cleaned-input>",
		Short: "Standardize a cleaned table, project it and run the clustering suite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := internal.NewDefaultLogger()

			var renderer ports.Renderer
			if chartDir != "" {
				r, err := render.NewECharts(chartDir)
				if err != nil {
					return err
				}
				renderer = r
			}

			opts := tabio.DefaultOptions()
			if cfg.Input.KeyField != "" {
				opts.KeyField = cfg.Input.KeyField
			}
			if cfg.Input.NameField != "" {
				opts.NameField = cfg.Input.NameField
			}

			a, err := analysis.LoadAnalyzer(args[0], opts, renderer, logger)
			if err != nil {
				return err
			}
			if _, err := a.ComputePrincipalComponents(); err != nil {
				return err
			}
			if err := a.PlotAlongComponents(0, 1); err != nil {
				return err
			}

			if hierMethod == "" {
				if _, err := a.HierarchicalAll(cluster.Metric(hierMetric), threshold, onComponents); err != nil {
					return err
				}
			} else {
				cfg := cluster.HierarchicalConfig{
					Metric:       cluster.Metric(hierMetric),
					Method:       cluster.Method(hierMethod),
					Threshold:    threshold,
					OnComponents: onComponents,
				}
				if _, err := a.Hierarchical(cfg); err != nil {
					return err
				}
			}

			dcfg := cluster.DefaultDensityConfig()
			dcfg.MinClusterSize = minDense
			dcfg.OnComponents = onComponents
			if _, err := a.Density(dcfg); err != nil {
				return err
			}

			mcfg := cluster.DefaultMixtureConfig(gmComponents)
			mcfg.OnComponents = onComponents
			if _, err := a.GaussianMixture(mcfg); err != nil {
				return err
			}
			if _, err := a.BayesianGaussianMixture(mcfg); err != nil {
				return err
			}
			if _, err := a.BICSweep(1, bicMax, cluster.Full, mcfg.Restarts, onComponents); err != nil {
				return err
			}

			kcfg := cluster.DefaultKMeansConfig(kmeansK)
			kcfg.OnComponents = onComponents
			if _, _, err := a.KMeans(kcfg); err != nil {
				return err
			}
			if _, err := a.KMeansSweep(2, sweepMax, kcfg.Restarts, onComponents); err != nil {
				return err
			}

			if reportPath != "" {
				if err := a.WriteReport(reportPath); err != nil {
					return err
				}
				logger.Info("report written to %s", reportPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chartDir, "charts", cfg.Output.ChartDir, "directory for diagnostic charts (empty disables)")
	cmd.Flags().StringVar(&reportPath, "report", cfg.Output.ReportPath, "HTML session report path (empty disables)")
	cmd.Flags().IntVar(&onComponents, "on-components", 0, "cluster on the first N principal components (0 = full space)")
	cmd.Flags().IntVar(&kmeansK, "kmeans", 4, "cluster count for the k-means run")
	cmd.Flags().IntVar(&sweepMax, "kmeans-sweep-max", 8, "upper bound (exclusive) of the k-means sweep")
	cmd.Flags().IntVar(&gmComponents, "gm", 4, "component count for the Gaussian mixture runs")
	cmd.Flags().IntVar(&bicMax, "bic-max", 8, "upper bound (exclusive) of the BIC sweep")
	cmd.Flags().StringVar(&hierMethod, "method", "", "single linkage method to run (default: all)")
	cmd.Flags().StringVar(&hierMetric, "metric", string(cluster.Euclidean), "distance metric for hierarchical clustering")
	cmd.Flags().Float64Var(&threshold, "threshold", 8, "tree-cut distance for hierarchical clustering")
	cmd.Flags().IntVar(&minDense, "min-cluster-size", 2, "minimum dense-region size for DBSCAN")
	return cmd
}
