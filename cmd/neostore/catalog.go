package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/catalog"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/filter"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/pagination"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/query"
)

type productsFlags struct {
	category string
	brand    string
	minPrice string
	maxPrice string
	search   string
	sort     string
	page     int
	limit    int
	fields   []string
	all      bool
	workers  int
}

func newProductsCmd(getApp func() *app, out *printer) *cobra.Command {
	var f productsFlags

	cmd := &cobra.Command{
		Use:     "products",
		Short:   "List products with filters, sorting and pagination",
		GroupID: "catalog",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()

			limit := a.cfg.PageSize
			if cmd.Flags().Changed("limit") {
				limit = f.limit
			}

			store, err := buildFilterStore(f)
			if err != nil {
				return err
			}
			pipe := catalog.NewPipeline(a.catalog, store, limit)
			if cmd.Flags().Changed("limit") {
				if err := pipe.SetPageSize(limit); err != nil {
					return err
				}
			}
			if err := store.SetCurrentPage(f.page); err != nil {
				return fmt.Errorf("--page: %w", err)
			}

			w := cmd.OutOrStdout()

			if f.all {
				products, err := pipe.ExportAll(cmd.Context(), pagination.Config{MaxConcurrency: f.workers})
				if err != nil {
					return err
				}
				if out.JSON() {
					return out.printJSON(w, products)
				}
				printProducts(w, products)
				fmt.Fprintf(w, "\n%d products\n", len(products))
				return nil
			}

			d := pipe.Descriptor()
			if len(f.fields) > 0 {
				d = d.WithSelect(f.fields...)
			}
			page, err := a.catalog.Products(cmd.Context(), d)
			if err != nil {
				return err
			}

			if out.JSON() {
				return out.printJSON(w, page)
			}
			printPage(w, page, pipe.Pagination(page))
			return nil
		},
	}

	sortHelp := make([]string, 0, len(filter.SortOptions))
	for _, opt := range filter.SortOptions {
		sortHelp = append(sortHelp, string(opt.Key))
	}

	fl := cmd.Flags()
	fl.StringVar(&f.category, "category", "", "category id")
	fl.StringVar(&f.brand, "brand", "", "brand id")
	fl.StringVar(&f.minPrice, "min-price", "", "minimum price")
	fl.StringVar(&f.maxPrice, "max-price", "", "maximum price")
	fl.StringVarP(&f.search, "search", "q", "", "search by name")
	fl.StringVar(&f.sort, "sort", string(filter.DefaultSort), "sort order: "+strings.Join(sortHelp, ", "))
	fl.IntVarP(&f.page, "page", "p", 1, "page number")
	fl.IntVar(&f.limit, "limit", query.DefaultPageSize, fmt.Sprintf("page size, one of %v", query.PageSizes))
	fl.StringSliceVar(&f.fields, "select", nil, "fields to return (repeatable)")
	fl.BoolVar(&f.all, "all", false, "fetch every page of the listing")
	fl.IntVar(&f.workers, "workers", pagination.DefaultConfig().MaxConcurrency, "parallel page requests with --all")

	return cmd
}

// buildFilterStore turns flags into filter state the same way the storefront
// form does: blank prices are absent, sort accepts keys or labels.
func buildFilterStore(f productsFlags) (*filter.Store, error) {
	minPrice, err := filter.ParsePrice("minPrice", f.minPrice)
	if err != nil {
		return nil, err
	}
	maxPrice, err := filter.ParsePrice("maxPrice", f.maxPrice)
	if err != nil {
		return nil, err
	}

	sortKey := filter.DefaultSort
	if f.sort != "" {
		k, ok := filter.ParseSortKey(f.sort)
		if !ok {
			return nil, fmt.Errorf("unknown sort %q", f.sort)
		}
		sortKey = k
	}

	store := filter.NewStore()
	store.SetFilters(filter.Patch{
		Category: &f.category,
		Brand:    &f.brand,
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		Search:   filter.Ptr(strings.TrimSpace(f.search)),
		Sort:     &sortKey,
	})
	return store, nil
}

func newSearchCmd(getApp func() *app, out *printer) *cobra.Command {
	var (
		delay time.Duration
		limit int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search as you type: one search text per line on stdin",
		Long: `Each line read from stdin replaces the search text. The listing is
fetched once input has been quiet for --debounce, and at end of input for a
search still pending. Only the newest search is shown.`,
		GroupID: "catalog",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.PageSize
			}
			store := filter.NewStore()
			pipe := catalog.NewPipeline(a.catalog, store, limit)

			searches := make(chan string, 1)
			unsubscribe := store.Subscribe(func(prev, next filter.State) {
				if prev.Search == next.Search {
					return
				}
				for {
					select {
					case searches <- next.Search:
						return
					default:
						select {
						case <-searches:
						default:
						}
					}
				}
			})
			defer unsubscribe()

			debouncer := filter.NewDebouncer(store, delay)
			defer debouncer.Stop()

			lines := make(chan string)
			readErr := make(chan error, 1)
			go func() {
				defer close(lines)
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for scanner.Scan() {
					select {
					case lines <- strings.TrimSpace(scanner.Text()):
					case <-ctx.Done():
						readErr <- ctx.Err()
						return
					}
				}
				readErr <- scanner.Err()
			}()

			show := func(search string) error {
				page, err := pipe.Current(ctx)
				if err != nil {
					return err
				}
				a.logger.Debug().Str("search", search).Int("products", len(page.Products)).Msg("Search applied")
				if out.JSON() {
					return out.printJSON(w, page)
				}
				fmt.Fprintf(w, "Search: %q\n", search)
				printPage(w, page, pipe.Pagination(page))
				return nil
			}

			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case search := <-searches:
					if err := show(search); err != nil {
						return err
					}
				case line, ok := <-lines:
					if ok {
						debouncer.Push(line)
						continue
					}
					if err := <-readErr; err != nil {
						return fmt.Errorf("read search input: %w", err)
					}
					debouncer.Flush()
					select {
					case search := <-searches:
						return show(search)
					default:
						return nil
					}
				}
			}
		},
	}

	cmd.Flags().DurationVar(&delay, "debounce", filter.DefaultDebounce, "quiet period before a search is applied")
	cmd.Flags().IntVar(&limit, "limit", query.DefaultPageSize, fmt.Sprintf("page size, one of %v", query.PageSizes))
	return cmd
}

func newProductCmd(getApp func() *app, out *printer) *cobra.Command {
	return &cobra.Command{
		Use:     "product <id>",
		Short:   "Show one product",
		GroupID: "catalog",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := getApp().catalog.Product(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if out.JSON() {
				return out.printJSON(cmd.OutOrStdout(), p)
			}
			printProduct(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func newCategoriesCmd(getApp func() *app, out *printer) *cobra.Command {
	return &cobra.Command{
		Use:     "categories",
		Short:   "List categories",
		GroupID: "catalog",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := getApp().catalog.Categories(cmd.Context())
			if err != nil {
				return err
			}
			if out.JSON() {
				return out.printJSON(cmd.OutOrStdout(), cats)
			}
			printNamed(cmd.OutOrStdout(), cats, func(c catalog.Category) (string, string) { return c.ID, c.Name })
			return nil
		},
	}
}

func newBrandsCmd(getApp func() *app, out *printer) *cobra.Command {
	return &cobra.Command{
		Use:     "brands",
		Short:   "List brands",
		GroupID: "catalog",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			brands, err := getApp().catalog.Brands(cmd.Context())
			if err != nil {
				return err
			}
			if out.JSON() {
				return out.printJSON(cmd.OutOrStdout(), brands)
			}
			printNamed(cmd.OutOrStdout(), brands, func(b catalog.Brand) (string, string) { return b.ID, b.Name })
			return nil
		},
	}
}
