package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/cart"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/catalog"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/orders"
	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/pagination"
)

// printer writes command results as tables or, with --json, as JSON.
type printer struct {
	json *bool
}

func (p *printer) JSON() bool {
	return p.json != nil && *p.json
}

func (p *printer) printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// styles for the page bar. Plain when stdout is not a terminal.
type styles struct {
	current lipgloss.Style
	page    lipgloss.Style
	dim     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	if !useColor(w) {
		plain := lipgloss.NewStyle()
		return styles{current: plain, page: plain, dim: plain}
	}
	return styles{
		current: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		page:    lipgloss.NewStyle(),
		dim:     lipgloss.NewStyle().Faint(true),
	}
}

// useColor respects NO_COLOR and only colors terminals.
func useColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderPageBar renders "< 1 ... 4 [5] 6 ... 10 >". It returns "" when the
// listing has a single page.
func renderPageBar(ctrl *pagination.Controller, s styles) string {
	if !ctrl.Visible() {
		return ""
	}

	parts := make([]string, 0, 9)
	prev, next := "<", ">"
	if !ctrl.CanPrev() {
		prev = s.dim.Render(prev)
	}
	if !ctrl.CanNext() {
		next = s.dim.Render(next)
	}

	parts = append(parts, prev)
	for _, ind := range ctrl.Indicators() {
		switch {
		case ind.Ellipsis:
			parts = append(parts, s.dim.Render(ind.String()))
		case ind.Page == ctrl.Current:
			parts = append(parts, s.current.Render("["+ind.String()+"]"))
		default:
			parts = append(parts, s.page.Render(ind.String()))
		}
	}
	parts = append(parts, next)

	return strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func printProducts(w io.Writer, products []catalog.Product) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSUBPRICE\tSTOCK\tCATEGORY\tBRAND")
	for _, p := range products {
		brand := "-"
		if p.Brand != nil {
			brand = p.Brand.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			p.ID,
			truncate(p.Name, 40),
			p.Price.StringFixed(2),
			p.SubPrice.StringFixed(2),
			p.Stock,
			p.Category.Name,
			brand,
		)
	}
	tw.Flush()
}

func printPage(w io.Writer, page *catalog.Page, ctrl *pagination.Controller) {
	printProducts(w, page.Products)
	fmt.Fprintf(w, "\n%d products, page %d of %d\n", page.TotalProducts, page.CurrentPage, page.TotalPages)
	if bar := renderPageBar(ctrl, newStyles(w)); bar != "" {
		fmt.Fprintln(w, bar)
	}
}

func printProduct(w io.Writer, p *catalog.Product) {
	fmt.Fprintf(w, "ID:          %s\n", p.ID)
	fmt.Fprintf(w, "Name:        %s\n", p.Name)
	fmt.Fprintf(w, "Price:       %s\n", p.Price.StringFixed(2))
	if p.Discounted() {
		fmt.Fprintf(w, "Sale price:  %s\n", p.SubPrice.StringFixed(2))
	}
	fmt.Fprintf(w, "Stock:       %d\n", p.Stock)
	fmt.Fprintf(w, "Category:    %s\n", p.Category.Name)
	if p.Brand != nil {
		fmt.Fprintf(w, "Brand:       %s\n", p.Brand.Name)
	}
	if p.MainImage.SecureURL != "" {
		fmt.Fprintf(w, "Image:       %s\n", p.MainImage.SecureURL)
	}
	if p.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", p.Description)
	}
}

func printNamed[T any](w io.Writer, items []T, row func(T) (string, string)) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, it := range items {
		id, name := row(it)
		fmt.Fprintf(tw, "%s\t%s\n", id, name)
	}
	tw.Flush()
}

func printCart(w io.Writer, c *cart.Cart) {
	if len(c.Items) == 0 {
		fmt.Fprintln(w, "Your cart is empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tPRICE\tQTY\tTOTAL")
	for _, it := range c.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			it.Product.ID,
			truncate(it.Product.Name, 40),
			it.Product.SubPrice.StringFixed(2),
			it.Quantity,
			it.LineTotal().StringFixed(2),
		)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d items, subtotal %s\n", c.Count(), c.SubTotal.StringFixed(2))
}

func printOrders(w io.Writer, list []orders.Order) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No orders yet")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tITEMS\tTOTAL\tARRIVES")
	for _, o := range list {
		arrives := "-"
		if !o.ArrivesAt.IsZero() {
			arrives = o.ArrivesAt.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", o.ID, o.Status, len(o.Items), o.TotalPrice.StringFixed(2), arrives)
	}
	tw.Flush()
}
