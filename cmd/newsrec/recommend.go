package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rushteam/newsrec/service"
)

var (
	recUser     string
	recHistory  []string
	recTopN     int
	recPoolSize int
	recRandom   bool
	recSeed     int64
	recUnweight bool
	recFormat   string
	recExplain  bool
	recSimilar  bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [news-id...]",
	Short: "Recommend news for a reading history",
	Long: `Rank candidate articles against a reading history. History is taken from
positional arguments and --history, or from the history store for --user.

Output is JSON by default; --format csv writes one row per recommendation.
With --explain, the top profile terms and item terms are attached (JSON only).`,
	RunE: runRecommend,
}

func init() {
	f := recommendCmd.Flags()
	f.StringVar(&recUser, "user", "", "user id whose stored history is used")
	f.StringSliceVar(&recHistory, "history", nil, "comma-separated news ids, oldest first")
	f.IntVarP(&recTopN, "top", "n", 0, "number of recommendations (default recommend.top_n)")
	f.IntVar(&recPoolSize, "pool-size", 0, "candidate pool size (default recommend.pool_size)")
	f.BoolVar(&recRandom, "random", false, "sample the candidate pool at random")
	f.Int64Var(&recSeed, "seed", 0, "random seed (default recommend.seed)")
	f.BoolVar(&recUnweight, "unweighted", false, "weight every history item equally")
	f.StringVar(&recFormat, "format", "json", "output format: json or csv")
	f.BoolVar(&recExplain, "explain", false, "attach term-level explanations")
	f.BoolVar(&recSimilar, "similar-history", false, "attach the history items closest to the profile")
	rootCmd.AddCommand(recommendCmd)
}

type explainedRecommendation struct {
	service.Recommendation
	Explanation *service.ExplainResponse `json:"explanation,omitempty"`
}

type explainedResponse struct {
	*service.Response
	Items []explainedRecommendation `json:"items"`
}

func runRecommend(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(recFormat)
	if format != "json" && format != "csv" {
		return fmt.Errorf("unknown format %q (want json or csv)", recFormat)
	}
	if recExplain && format == "csv" {
		return fmt.Errorf("--explain is only supported with --format json")
	}

	ctx := cmd.Context()
	rt, err := newRuntime(ctx, appConfig)
	if err != nil {
		return err
	}
	defer rt.Close()

	history := append(append([]string{}, args...), recHistory...)
	req := service.Request{
		UserID:             recUser,
		History:            history,
		WithSimilarHistory: recSimilar,
	}
	flags := cmd.Flags()
	if flags.Changed("top") {
		req.TopN = &recTopN
	}
	if flags.Changed("pool-size") {
		req.PoolSize = &recPoolSize
	}
	if flags.Changed("random") {
		req.Random = &recRandom
	}
	if flags.Changed("seed") {
		req.Seed = &recSeed
	}
	if recUnweight {
		weighted := false
		req.Weighted = &weighted
	}

	resp, err := rt.svc.Recommend(ctx, req)
	if err != nil {
		return err
	}
	for _, w := range resp.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if format == "csv" {
		return writeRecommendationsCSV(os.Stdout, resp.Items)
	}
	if !recExplain {
		return writeJSON(os.Stdout, resp)
	}

	out := explainedResponse{Response: resp, Items: make([]explainedRecommendation, 0, len(resp.Items))}
	for _, it := range resp.Items {
		exp, err := rt.svc.Explain(ctx, service.ExplainRequest{
			UserID:   recUser,
			History:  history,
			Weighted: req.Weighted,
			NewsID:   it.NewsID,
		})
		if err != nil {
			return fmt.Errorf("explain %s: %w", it.NewsID, err)
		}
		out.Items = append(out.Items, explainedRecommendation{Recommendation: it, Explanation: exp})
	}
	return writeJSON(os.Stdout, out)
}
