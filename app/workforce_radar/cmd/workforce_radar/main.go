package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/catalog"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/config"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/logger"
)

var (
	configPath string
	envFiles   []string

	cfg *config.Config
	cat *catalog.Catalog
)

var rootCmd = &cobra.Command{
	Use:               "workforce_radar",
	Short:             "Workforce AI exposure aggregation",
	Long:              `Computes per-company workforce exposure snapshots and cross-company comparative analytics.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, ".env files loaded before config")
	rootCmd.AddCommand(aggregateCmd, impactCmd, compareCmd, ingestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup 加载 .env、配置、日志和职业目录
func setup(cmd *cobra.Command, args []string) error {
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("load env file %s: %w", file, err)
		}
	}

	loaded, err := config.LoadConfig(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config"):
		// 默认配置文件不存在时只使用默认值与环境变量
		def := config.Default()
		if err := config.ApplyEnv(&def); err != nil {
			return err
		}
		if err := config.Validate(&def); err != nil {
			return err
		}
		loaded = &def
	case err != nil:
		return fmt.Errorf("无法加载配置文件: %w", err)
	}
	cfg = loaded

	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Printf("无法初始化日志: %v", err)
		return err
	}

	if cfg.Catalog.Path != "" {
		c, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return err
		}
		cat = c
		logger.Log.Infof("已加载职业目录: %d 个职业", cat.Len())
	} else {
		logger.Log.Info("未配置职业目录，只使用报告自带的任务数据")
	}
	return nil
}
