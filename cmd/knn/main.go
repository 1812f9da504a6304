package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	dsio "github.com/go-sod/knn/internal/dataset/io"
	"github.com/go-sod/knn/internal/dispatcher"
	"github.com/go-sod/knn/internal/evaluate"
	"github.com/go-sod/knn/internal/knn"
	"github.com/go-sod/knn/internal/logging"
	"github.com/go-sod/knn/internal/setup"
	"github.com/spf13/cobra"
)

var (
	logLevel    string
	modelConfig dispatcher.Config
)

func ClassifyCommand() *cobra.Command {
	var trainFile string
	var queries []string
	var explain bool

	var cmd = &cobra.Command{
		Use:   "classify -i trainFile -k 5 [-q query]...",
		Short: "Trains a model on the provided data and prints the label of every query",
		Long:  "Queries are JSON attribute objects. Without -q, one query per line is read from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			model, err := train(ctx, trainFile)
			if err != nil {
				return err
			}
			if len(queries) == 0 {
				queries, err = readLines(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			for _, q := range queries {
				attrs, err := dsio.ParseAttributes([]byte(q))
				if err != nil {
					return fmt.Errorf("query %s: %w", q, err)
				}
				label, err := model.Classify(knn.NewQuery(attrs), modelConfig.K)
				if err != nil {
					return fmt.Errorf("classify %s: %w", q, err)
				}
				_, _ = fmt.Fprintln(out, label)
				if !explain {
					continue
				}
				nn, err := model.Neighbors(knn.NewQuery(attrs), modelConfig.K)
				if err != nil {
					return fmt.Errorf("neighbors %s: %w", q, err)
				}
				for _, n := range nn {
					_, _ = fmt.Fprintf(out, "  #%d %s %.4f\n", n.Index, n.Point.Label(), n.Distance)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&trainFile, "input", "i", "", "name of training data file")
	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "JSON object of query attributes, may be repeated")
	cmd.Flags().BoolVarP(&explain, "explain", "e", false, "print the ranked neighbors under each label")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func EvaluateCommand() *cobra.Command {
	var trainFile string
	var workers int

	var cmd = &cobra.Command{
		Use:   "evaluate -i trainFile -k 5",
		Short: "Runs leave-one-out validation on the provided data and prints the confusion table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logging.FromContext(ctx)
			records, err := dsio.LoadRecords(trainFile)
			if err != nil {
				return err
			}
			modelOpts, err := setup.ModelOptionsFor(&modelConfig)
			if err != nil {
				return err
			}
			logger.Infof("evaluating %d records with k=%d", len(records), modelConfig.K)
			report, err := evaluate.LeaveOneOut(ctx, records, modelConfig.K,
				evaluate.WithWorkers(workers),
				evaluate.WithModelOptions(modelOpts...),
			)
			if err != nil {
				return err
			}
			report.Render(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVarP(&trainFile, "input", "i", "", "name of training data file")
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "number of concurrent hold-out runs")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func train(ctx context.Context, path string) (*knn.Model, error) {
	logger := logging.FromContext(ctx)
	records, err := dsio.LoadRecords(path)
	if err != nil {
		return nil, err
	}
	opts, err := setup.ModelOptionsFor(&modelConfig)
	if err != nil {
		return nil, err
	}
	model, err := knn.New(records, opts...)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", path, err)
	}
	logger.Debugf("trained model on %d records, %d features", model.Len(), len(model.Features()))
	return model, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func main() {
	Main := &cobra.Command{
		Use:           "knn",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := logging.NewLogger(logLevel, false)
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
		},
	}

	flags := Main.PersistentFlags()
	flags.StringVarP(&logLevel, "log-level", "", "warn", "logging level: debug, info, warn or error")
	flags.IntVarP(&modelConfig.K, "neighbors", "k", 5, "number of neighbors")
	flags.StringVarP(&modelConfig.TieBreak, "tie-break", "", string(knn.TieBreakRandom), "tie-break policy: RANDOM or LOWEST_LABEL")
	flags.Uint32VarP(&modelConfig.Seed, "seed", "s", 0, "seed of the random tie-break, 0 picks a random one")
	flags.StringVarP(&modelConfig.Metric, "metric", "m", string(knn.MetricEuclidean), "distance metric: EUCLIDEAN, MANHATTAN or CHEBYSHEV")
	flags.StringVarP(&modelConfig.MissingPolicy, "missing", "", string(knn.MissingMaximal), "missing attribute policy: MAXIMAL or IGNORE")
	flags.StringVarP(&modelConfig.WeightsFile, "weights", "", "", "TOML file of categorical feature weights")

	Main.AddCommand(ClassifyCommand())
	Main.AddCommand(EvaluateCommand())

	if err := Main.ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
