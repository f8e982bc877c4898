package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/orders"
)

func newCartCmd(getApp func() *app, out *printer) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cart",
		Short:   "Show the cart",
		GroupID: "shopping",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			if err := a.requireSession(); err != nil {
				return err
			}
			c, err := a.cart.Get(cmd.Context())
			if err != nil {
				return err
			}
			if out.JSON() {
				return out.printJSON(cmd.OutOrStdout(), c)
			}
			printCart(cmd.OutOrStdout(), c)
			return nil
		},
	}

	var quantity int
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			if err := a.requireSession(); err != nil {
				return err
			}
			if err := a.cart.Add(cmd.Context(), args[0], quantity); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Added to cart")
			return nil
		},
	}
	add.Flags().IntVarP(&quantity, "quantity", "n", 1, "units to add")

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			if err := a.requireSession(); err != nil {
				return err
			}
			if err := a.cart.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed from cart")
			return nil
		},
	}

	update := &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Change the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity %q is not a number", args[1])
			}
			a := getApp()
			if err := a.requireSession(); err != nil {
				return err
			}
			if err := a.cart.UpdateQuantity(cmd.Context(), args[0], n); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cart updated")
			return nil
		},
	}

	cmd.AddCommand(add, remove, update)
	return cmd
}

func newCheckoutCmd(getApp func() *app, out *printer) *cobra.Command {
	var (
		form    orders.Checkout
		payment string
	)

	cmd := &cobra.Command{
		Use:     "checkout",
		Short:   "Place an order for the cart",
		GroupID: "shopping",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			if err := a.requireSession(); err != nil {
				return err
			}

			method, ok := orders.ParsePaymentMethod(payment)
			if !ok {
				return fmt.Errorf("unknown payment method %q (cash or card)", payment)
			}
			form.PaymentMethod = method

			res, err := a.orders.Checkout(cmd.Context(), form)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.JSON() {
				return out.printJSON(w, res)
			}
			if res.PaymentURL == "" {
				fmt.Fprintf(w, "Order placed successfully (%s)\n", res.OrderID)
				return nil
			}
			fmt.Fprintf(w, "Order %s created. Complete the payment at:\n%s\n", res.OrderID, res.PaymentURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Phone, "phone", "", "contact phone (01XXXXXXXXX)")
	cmd.Flags().StringVar(&form.Address, "address", "", "delivery address")
	cmd.Flags().StringVar(&payment, "payment", string(orders.PaymentCard), "payment method: cash or card")
	return cmd
}

func newOrdersCmd(getApp func() *app, out *printer) *cobra.Command {
	return &cobra.Command{
		Use:     "orders",
		Short:   "List your orders",
		GroupID: "shopping",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			if err := a.requireSession(); err != nil {
				return err
			}
			list, err := a.orders.List(cmd.Context())
			if err != nil {
				return err
			}
			if out.JSON() {
				return out.printJSON(cmd.OutOrStdout(), list)
			}
			printOrders(cmd.OutOrStdout(), list)
			return nil
		},
	}
}
