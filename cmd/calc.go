package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/valuation-api/internal/valuation"
)

var calcFlags struct {
	category        string
	monthlyRevenue  int64
	monthlyProfit   int64
	audienceSize    int64
	contentCategory string
	avgViews        float64
	avgLikes        float64
	ageBucket       string
	save            bool
}

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Run a one-shot valuation from flags",
	Long: `Runs the valuation pipeline once and prints the result.

Examples:
  # A two year old smart store doing 30M KRW a month
  calc --category ecommerce --revenue 30000000 --profit 8000000 --age 2-3

  # A 100k subscriber education channel
  calc --category video --audience 100000 --content education --views 30000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "calc")
		if err != nil {
			return err
		}
		defer env.Close()

		cat := valuation.ParseCategory(calcFlags.category)

		metric := calcFlags.avgViews
		if cat == valuation.CategoryImageSocial {
			metric = calcFlags.avgLikes
		}

		in := valuation.Input{
			Category:         cat,
			MonthlyRevenue:   calcFlags.monthlyRevenue,
			MonthlyProfit:    calcFlags.monthlyProfit,
			AudienceSize:     calcFlags.audienceSize,
			ContentCategory:  calcFlags.contentCategory,
			EngagementMetric: metric,
			AgeBucket:        valuation.ParseAgeBucket(calcFlags.ageBucket),
		}

		res := env.Calc.Calculate(cmd.Context(), in)

		if calcFlags.save {
			rec, err := env.Store.CreateValuation(cmd.Context(), in, res)
			if err != nil {
				return err
			}
			fmt.Printf("Saved:      %s\n", rec.ID)
		}

		fmt.Printf("Value:      %s (%d KRW)\n", valuation.FormatKRW(res.Value), res.Value)
		fmt.Printf("Range:      %s\n", valuation.FormatRange(res.Range))
		fmt.Printf("Percentile: %d\n", res.Percentile)
		fmt.Printf("Method:     %s\n", res.Method)
		fmt.Printf("Confidence: %s\n", res.Confidence)
		if res.Details.AgeRationale != "" {
			fmt.Printf("Age note:   %s\n", res.Details.AgeRationale)
		}
		if res.Details.Capped {
			fmt.Println("Note:       value clamped by the revenue cap")
		}

		return nil
	},
}

func init() {
	calcCmd.Flags().StringVar(&calcFlags.category, "category", "", "business category (required)")
	calcCmd.Flags().Int64Var(&calcFlags.monthlyRevenue, "revenue", 0, "monthly revenue in KRW")
	calcCmd.Flags().Int64Var(&calcFlags.monthlyProfit, "profit", 0, "monthly profit in KRW")
	calcCmd.Flags().Int64Var(&calcFlags.audienceSize, "audience", 0, "subscriber/follower count")
	calcCmd.Flags().StringVar(&calcFlags.contentCategory, "content", "", "content category (education, finance, ...)")
	calcCmd.Flags().Float64Var(&calcFlags.avgViews, "views", 0, "average views per content")
	calcCmd.Flags().Float64Var(&calcFlags.avgLikes, "likes", 0, "average likes per content")
	calcCmd.Flags().StringVar(&calcFlags.ageBucket, "age", "", "business age bucket (e.g. 6-12, 1-2, 3+)")
	calcCmd.Flags().BoolVar(&calcFlags.save, "save", false, "persist the result")
	_ = calcCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(calcCmd)
}
