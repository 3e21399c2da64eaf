package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/decoda/decoda/internal/model"
	"github.com/decoda/decoda/internal/pipeline"
)

var (
	askSession    string
	askType       string
	askRegion     string
	askAmount     float64
	askPriorities []string
	askJSON       bool
	askTimeout    time.Duration
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Ask a question about NDIS supports, policies or funding",
	Long: `Ask runs one query through the full pipeline: the query is normalized,
matched against the support catalogue, answered by the configured backend,
and the answer is citation-checked and fact-verified before display.

Example:
  decoda ask "what is the code for personal care on weekdays"
  decoda ask --type policy_guidance "am I eligible for SIL funding"
  decoda ask --type budget_planning --amount 50000 "plan my supports"
  decoda ask --session 6e9f... "what about evenings"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVar(&askSession, "session", "", "session id to continue (new session when omitted)")
	askCmd.Flags().StringVar(&askType, "type", "", "query type (code_lookup, policy_guidance, service_recommendation, scheme_updates, budget_planning)")
	askCmd.Flags().StringVar(&askRegion, "region", "", "region for price highlighting (e.g. VIC, NSW, Remote)")
	askCmd.Flags().Float64Var(&askAmount, "amount", 0, "total plan amount for budget planning")
	askCmd.Flags().StringSliceVar(&askPriorities, "priority", nil, "budget priorities (repeatable)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the raw response record as JSON")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 60*time.Second, "overall query timeout")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	engine, err := newEngine(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	resp, err := engine.Answer(ctx, pipeline.Request{
		SessionID:  askSession,
		Query:      strings.Join(args, " "),
		Type:       model.QueryType(askType),
		Region:     askRegion,
		PlanAmount: askAmount,
		Priorities: askPriorities,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if askJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp.Answer)
	}

	renderResponse(os.Stdout, resp)
	return nil
}
