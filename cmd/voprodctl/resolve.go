package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/astroview/voprod/internal/logger"
	"github.com/astroview/voprod/internal/products"
	"github.com/astroview/voprod/internal/sources/profiles"
	"github.com/astroview/voprod/internal/table"
)

type resolveFlags struct {
	sourceFile  string
	profileFile string
	row         int
	title       string
	timeout     time.Duration
	noAnalysis  bool
	asJSON      bool
	verbose     bool
}

func (f *resolveFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.sourceFile, "source", "s", "", "path to the source table JSON")
	cmd.Flags().StringVarP(&f.profileFile, "profiles", "p", "", "path to the archive-profiles YAML")
	cmd.Flags().IntVarP(&f.row, "row", "r", 0, "source table row")
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "base title for product names")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 30*time.Second, "fetch timeout")
	cmd.Flags().BoolVar(&f.noAnalysis, "no-analysis", false, "skip file-analysis entries")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the raw product JSON")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
}

// setup builds the pieces every subcommand needs: a resolver, a fresh
// session context, the source table, and the profile options.
func (f *resolveFlags) setup(dlURL string) (*products.Resolver, *products.Context, *table.TableModel, products.Options, error) {
	level := "warn"
	if f.verbose {
		level = "debug"
	}
	log := logger.New(level, true)

	src, err := loadSourceTable(f.sourceFile)
	if err != nil {
		return nil, nil, nil, products.Options{}, err
	}

	opts := products.Options{}
	if f.profileFile != "" {
		set := profiles.NewSet()
		config, err := profiles.NewLoader(f.profileFile).Load()
		if err != nil {
			return nil, nil, nil, products.Options{}, err
		}
		compiled, err := profiles.NewMapper().MapProfiles(config)
		if err != nil {
			return nil, nil, nil, products.Options{}, err
		}
		set.Replace(compiled)
		var name string
		opts, name = set.OptionsFor(tableID(src), dlURL)
		if name != "" {
			log.Debugf("matched profile %s", name)
		}
	}

	resolver := products.NewResolver(table.NewHTTPFetcher(f.timeout, log), log)
	return resolver, products.NewContext(), src, opts, nil
}

func loadSourceTable(path string) (*table.TableModel, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source table: %w", err)
	}
	var t table.TableModel
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse source table: %w", err)
	}
	return &t, nil
}

func tableID(t *table.TableModel) string {
	if t == nil {
		return ""
	}
	return t.ID
}

func newResolveCmd() *cobra.Command {
	flags := &resolveFlags{}
	cmd := &cobra.Command{
		Use:   "resolve <datalink-url>",
		Short: "Resolve one row's DataLink table into a product menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dlURL := args[0]
			resolver, ctx, src, opts, err := flags.setup(dlURL)
			if err != nil {
				return err
			}

			c, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()

			product := resolver.SingleProduct(c, ctx, opts, products.SingleParams{
				DLTableURL:     dlURL,
				Source:         src,
				Row:            flags.row,
				TitleStr:       flags.title,
				DoFileAnalysis: !flags.noAnalysis,
			})

			return printProduct(cmd, product, flags.asJSON)
		},
	}
	flags.register(cmd)
	return cmd
}

func printProduct(cmd *cobra.Command, product *products.Entry, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(product)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s", formatEntry(product, 0))
	if product.DisplayType == products.DisplayFromMenu || len(product.Menu) > 0 {
		for i, e := range product.Menu {
			marker := " "
			if product.DisplayType == products.DisplayFromMenu && i == product.ActiveIndex {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s", marker, formatEntry(e, 1))
		}
	}
	return nil
}

func formatEntry(e *products.Entry, depth int) string {
	indent := strings.Repeat("  ", depth)
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s] %s", indent, e.DisplayType, e.Name)
	if e.MenuKey != "" {
		fmt.Fprintf(&b, "  (key=%s)", e.MenuKey)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, "\n%s      %s", indent, e.URL)
	}
	if e.Message != "" && e.Message != e.Name {
		fmt.Fprintf(&b, "\n%s      %s", indent, e.Message)
	}
	b.WriteString("\n")
	return b.String()
}
