package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/comparative"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/engine"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/impact"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/logger"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/storage"
)

var (
	outPath   string
	noPersist bool
	companyID string
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Run the comparative batch over every stored run",
	Long: `Loads every stored run, restores or recomputes its workforce snapshot,
aggregates the comparative payload and stores it.`,
	Args: cobra.NoArgs,
	RunE: runAggregate,
}

var impactCmd = &cobra.Command{
	Use:   "impact <report.json>",
	Short: "Compute the workforce snapshot of one report file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImpact,
}

var compareCmd = &cobra.Command{
	Use:   "compare <inputs.json>",
	Short: "Aggregate a JSON list of runs without a database",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompare,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <report.json>",
	Short: "Store a finished report as a new run together with its snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	for _, c := range []*cobra.Command{aggregateCmd, impactCmd, compareCmd} {
		c.Flags().StringVarP(&outPath, "out", "o", "", "write JSON output to this file instead of stdout")
	}
	aggregateCmd.Flags().BoolVar(&noPersist, "no-persist", false, "do not store the generated payload")
	ingestCmd.Flags().StringVar(&companyID, "company-id", "", "company id, defaults to the company name in the report")
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func openStore() (*storage.Storage, error) {
	store, err := storage.NewStorage(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}
	logger.Log.Info("已成功连接到数据库")
	return store, nil
}

func runAggregate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	e := engine.NewEngine(cfg, store, cat)
	res, err := e.Run(ctx, engine.RunOptions{
		Persist: !noPersist,
		ProgressCallback: func(status string, progress int) {
			logger.Log.Debugf("[%3d%%] %s", progress, status)
		},
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), res)
}

// impactOutput impact 命令的输出，两种岗位视角分别给出
type impactOutput struct {
	Snapshot          *model.WorkforceImpactSnapshot `json:"snapshot"`
	TaskMixRoles      []impact.RoleExposure          `json:"taskMixRoles"`
	NodeShareRoles    []impact.RoleImpact            `json:"nodeShareRoles"`
	AggregationImpact []impact.AggregationImpact     `json:"aggregationImpact"`
	Issues            []model.Issue                  `json:"issues"`
}

func runImpact(cmd *cobra.Command, args []string) error {
	var report model.OrgReport
	if err := readJSON(args[0], &report); err != nil {
		return err
	}

	res := impact.NewCalculator(cat).Calculate(report)
	for _, is := range res.Issues {
		logger.Log.WithField("kind", is.Kind).Warn(is.String())
	}
	if res.Snapshot == nil {
		logger.Log.Warnf("公司 [%s] 暂无可用的劳动力信号", report.Company.Name)
	}

	return writeJSON(cmd.OutOrStdout(), impactOutput{
		Snapshot:          res.Snapshot,
		TaskMixRoles:      res.Roles,
		NodeShareRoles:    impact.CollectRoleImpacts(res.Graph),
		AggregationImpact: impact.CollectAggregationImpacts(report.Aggregations),
		Issues:            res.Issues,
	})
}

func runCompare(cmd *cobra.Command, args []string) error {
	var inputs []comparative.Input
	if err := readJSON(args[0], &inputs); err != nil {
		return err
	}

	payload, issues := engine.NewEngine(cfg, nil, cat).Compare(inputs)
	for _, is := range issues {
		logger.Log.WithField("kind", is.Kind).Warn(is.String())
	}
	logger.Log.Infof("对比分析完成: %d 家公司, %d 次运行", payload.Coverage.Companies, payload.Coverage.Runs)
	return writeJSON(cmd.OutOrStdout(), payload)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	var report model.OrgReport
	if err := readJSON(args[0], &report); err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runID, res, err := engine.NewEngine(cfg, store, cat).Ingest(ctx, companyID, report)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run %d stored, snapshot available: %t, issues: %d\n", runID, res.Snapshot != nil, len(res.Issues))
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(stdout io.Writer, v any) error {
	w := stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
