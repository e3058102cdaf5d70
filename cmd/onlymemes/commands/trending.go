package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"onlymemes/cmd/onlymemes/output"
	"onlymemes/internal/meme"
)

var (
	trendingLimit int
	suggestN      int
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Show trending memes and category suggestions",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := bootstrap()
		if err != nil {
			return err
		}
		defer e.close()

		svc := &meme.Service{DB: e.db, Log: e.log}
		ctx := cmd.Context()

		top, err := svc.Trending(ctx, "", trendingLimit)
		if err != nil {
			return err
		}
		output.Section("Trending memes")
		if len(top) == 0 {
			output.Warning("no memes yet, run `onlymemes seed` to load demo data")
		} else {
			fmt.Println(output.Table(trendingHeaders, trendingRows(top)))
		}

		counts, err := svc.CategoryCounts(ctx, suggestN)
		if err != nil {
			return err
		}
		output.Section("Suggestions")
		if len(counts) == 0 {
			output.Muted("nothing to suggest")
		}
		for _, c := range counts {
			output.Info("%s (%d memes)", meme.Suggestion(c.Category), c.Count)
		}
		return nil
	},
}

func init() {
	trendingCmd.Flags().IntVarP(&trendingLimit, "limit", "n", meme.TrendingLimit, "Number of memes to show")
	trendingCmd.Flags().IntVar(&suggestN, "suggest", meme.SuggestionCount, "Number of categories to suggest")
	rootCmd.AddCommand(trendingCmd)
}

var trendingHeaders = []string{"#", "Title", "Category", "Likes", "Views", "ID"}

func trendingRows(views []meme.View) [][]string {
	rows := make([][]string, 0, len(views))
	for i, v := range views {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			v.Title,
			v.Category,
			strconv.FormatInt(v.Reactions.Likes, 10),
			strconv.FormatInt(v.Views, 10),
			v.ID,
		})
	}
	return rows
}
