package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/astroview/voprod/internal/products"
)

func newGridCmd() *cobra.Command {
	flags := &resolveFlags{}
	var red, green, blue int
	cmd := &cobra.Command{
		Use:   "grid <datalink-url>",
		Short: "Resolve a row's related image grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dlURL := args[0]
			resolver, ctx, src, opts, err := flags.setup(dlURL)
			if err != nil {
				return err
			}

			var threeColor *products.ThreeColorOps
			if red >= 0 || green >= 0 || blue >= 0 {
				threeColor = &products.ThreeColorOps{Red: red, Green: green, Blue: blue}
			}

			c, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()

			product := resolver.RelatedGridProduct(c, ctx, opts, products.RelatedGridParams{
				DLTableURL: dlURL,
				Source:     src,
				Row:        flags.row,
				TitleStr:   flags.title,
				ThreeColor: threeColor,
			})

			if product.DisplayType == products.DisplayMessage {
				fmt.Fprintln(cmd.OutOrStdout(), product.Message)
				return nil
			}
			if flags.asJSON {
				return printProduct(cmd, product, true)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "image grid (%d plots)\n", len(product.Activate.Requests))
			for _, req := range product.Activate.Requests {
				fmt.Fprintf(out, "  %-28s %s\n", req.PlotID, req.URL)
			}
			if tc := product.Activate.ThreeColor; tc != nil {
				fmt.Fprintf(out, "three-color composite %s\n", tc.First().PlotID)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&red, "red", -1, "request index for the red band")
	cmd.Flags().IntVar(&green, "green", -1, "request index for the green band")
	cmd.Flags().IntVar(&blue, "blue", -1, "request index for the blue band")
	return cmd
}

func newThreeColorCmd() *cobra.Command {
	flags := &resolveFlags{}
	cmd := &cobra.Command{
		Use:   "three-color <datalink-url>",
		Short: "Show the band assignment a related grid would use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dlURL := args[0]
			resolver, ctx, src, opts, err := flags.setup(dlURL)
			if err != nil {
				return err
			}

			c, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()

			assignments, err := resolver.DescribeThreeColor(c, ctx, opts, dlURL, src, flags.row)
			if err != nil {
				return err
			}

			indexes := make([]int, 0, len(assignments))
			for idx := range assignments {
				indexes = append(indexes, idx)
			}
			sort.Ints(indexes)

			out := cmd.OutOrStdout()
			for _, idx := range indexes {
				a := assignments[idx]
				fmt.Fprintf(out, "%2d  %-6s %s\n", idx, a.Color, a.Title)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
