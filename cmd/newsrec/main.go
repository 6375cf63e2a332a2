// Command newsrec 是基于 TF-IDF 内容相似度的新闻推荐服务与命令行工具。
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rushteam/newsrec/config"
	"github.com/rushteam/newsrec/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	configPath   string
	artifactsDir string
	logLevel     string

	appConfig *config.App
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "newsrec",
	Short: "Content-based news recommendation",
	Long: `newsrec ranks news articles against a reader's history using cosine
similarity over frozen TF-IDF term weights.

Configuration is read from defaults, then newsrec.yaml (or --config /
NEWSREC_CONFIG), then NEWSREC_* environment variables. A .env file in the
working directory is loaded first when present.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// .env 不存在时忽略
		_ = godotenv.Load()

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if artifactsDir != "" {
			cfg.Artifacts.Dir = artifactsDir
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		logging.Init(cfg.Log)
		appConfig = cfg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default newsrec.yaml or $NEWSREC_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&artifactsDir, "artifacts", "", "corpus artifact directory (overrides artifacts.dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides log.level)")
	rootCmd.Version = Version
}
