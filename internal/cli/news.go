package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/newsletter/internal/pagination"
	"github.com/me/newsletter/pkg/model"
)

const excerptLength = 160

func newNewsCmd() *cobra.Command {
	var (
		page     int
		limit    int
		period   string
		category string
	)

	cmd := &cobra.Command{
		Use:   "news",
		Short: "List the latest news",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := model.ParsePeriod(period)
			if err != nil {
				return err
			}
			if err := requireSession(cmd); err != nil {
				return err
			}

			q := model.NewsQuery{Page: page, Limit: limit, Period: p, Category: category}
			q.Clamp()
			result, err := mgr.API().GetNews(cmd.Context(), q)
			if err != nil {
				return fmt.Errorf("list news: %w", err)
			}

			out := cmd.OutOrStdout()
			if result.Empty() {
				fmt.Fprintln(out, "No news found.")
				return nil
			}

			window := p.Label()
			if since := p.Since(time.Now()); !since.IsZero() {
				window += " (since " + since.Format("Jan 2") + ")"
			}
			fmt.Fprintf(out, "%s · %s %s found\n", window, humanize.Comma(int64(result.TotalItems)),
				plural(result.TotalItems, "article", "articles"))
			fmt.Fprintln(out)
			for i := range result.News {
				printCard(out, &result.News[i])
			}

			pages := pagination.Window(result.CurrentPage, result.TotalPages)
			fmt.Fprintf(out, "Page %d of %d\n", pages.Current, pages.Total)
			if pages.Visible() {
				fmt.Fprintf(out, "Pages: %s\n", strings.Join(pages.Labels(), " "))
			}
			if pages.HasNext {
				fmt.Fprintf(out, "Next:  newsletter news --page %d\n", pages.NextPage)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", model.DefaultNewsLimit, "Items per page (max 100)")
	cmd.Flags().StringVar(&period, "period", "", "Publish window: day, week or month")
	cmd.Flags().StringVar(&category, "category", "", "Category name")

	cmd.AddCommand(newNewsShowCmd())
	return cmd
}

func newNewsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one news item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid news id %q", args[0])
			}
			if err := requireSession(cmd); err != nil {
				return err
			}

			item, err := mgr.API().GetNewsItem(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get news %d: %w", id, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, item.Title)
			fmt.Fprintln(out, strings.Repeat("=", len([]rune(item.Title))))
			fmt.Fprintf(out, "Published %s (%s)\n", item.PublishedAt.Format("2006-01-02 15:04"), humanize.Time(item.PublishedAt))
			if item.Source != "" {
				fmt.Fprintf(out, "Source:    %s\n", item.Source)
			}
			if names := item.CategoryNames(); len(names) > 0 {
				fmt.Fprintf(out, "Topics:    %s\n", strings.Join(names, ", "))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, strings.TrimSpace(item.Content))
			return nil
		},
	}
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List news categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(cmd); err != nil {
				return err
			}
			cats, err := mgr.API().GetCategories(cmd.Context())
			if err != nil {
				return fmt.Errorf("list categories: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(cats) == 0 {
				fmt.Fprintln(out, "No categories available.")
				return nil
			}
			fmt.Fprintf(out, "%-6s  %-20s  %s\n", "ID", "NAME", "DESCRIPTION")
			fmt.Fprintf(out, "%-6s  %-20s  %s\n", "--", "----", "-----------")
			for _, c := range cats {
				fmt.Fprintf(out, "%-6d  %-20s  %s\n", c.ID, c.Name, c.Description)
			}
			return nil
		},
	}
}

func printCard(w io.Writer, n *model.News) {
	fmt.Fprintf(w, "#%-5d %s\n", n.ID, n.Title)
	meta := humanize.Time(n.PublishedAt)
	if names := n.CategoryNames(); len(names) > 0 {
		meta = strings.Join(names, ", ") + " · " + meta
	}
	fmt.Fprintf(w, "       %s\n", meta)
	if excerpt := n.Excerpt(excerptLength); excerpt != "" {
		fmt.Fprintf(w, "       %s\n", excerpt)
	}
	fmt.Fprintln(w)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
