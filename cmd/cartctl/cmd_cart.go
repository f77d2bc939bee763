package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/samko5sam/miria/internal/cart/adapter"
	"github.com/samko5sam/miria/internal/cart/domain"
)

var (
	addQuantity  int
	addName      string
	addPrice     int64
	addStoreID   string
	addStoreName string
)

var addCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Long: `Add a product to the cart. Adding a product that is already in the
cart increases the quantity of the existing line instead of creating a
duplicate.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the current cart",
	RunE:  runList,
}

var updateCmd = &cobra.Command{
	Use:   "update <item-id> <quantity>",
	Short: "Change the quantity of a cart line",
	Long: `Change the quantity of a cart line. Quantities below 1 are rejected;
use 'cartctl remove' to delete a line.`,
	Args: cobra.ExactArgs(2),
	RunE: runUpdate,
}

var removeCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove a line from the cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE:  runClear,
}

func init() {
	addCmd.Flags().IntVarP(&addQuantity, "quantity", "q", 1, "Quantity to add")
	addCmd.Flags().StringVar(&addName, "name", "", "Product name snapshot (anonymous cart only)")
	addCmd.Flags().Int64Var(&addPrice, "price", 0, "Product price in cents (anonymous cart only)")
	addCmd.Flags().StringVar(&addStoreID, "store-id", "", "Store ID for display grouping")
	addCmd.Flags().StringVar(&addStoreName, "store-name", "", "Store name for display grouping")
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.Store().Refresh(cmd.Context()); err != nil {
		return err
	}

	err = a.Store().AddItem(cmd.Context(), adapter.AddInput{
		ProductID:    args[0],
		ProductName:  addName,
		ProductPrice: addPrice,
		Quantity:     addQuantity,
		StoreID:      addStoreID,
		StoreName:    addStoreName,
	})
	if err != nil {
		return err
	}

	cart := a.Store().GetCart()
	fmt.Printf("Added %s (x%d). Cart now holds %d item(s).\n", args[0], addQuantity, cart.TotalItems())
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.Store().Refresh(cmd.Context()); err != nil {
		return err
	}

	printCart(a.Store().GetCart())
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.Store().Refresh(cmd.Context()); err != nil {
		return err
	}
	if err := a.Store().UpdateItemQuantity(cmd.Context(), args[0], quantity); err != nil {
		return err
	}

	fmt.Printf("Updated item %s to quantity %d.\n", args[0], quantity)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.Store().Refresh(cmd.Context()); err != nil {
		return err
	}
	if err := a.Store().RemoveItem(cmd.Context(), args[0]); err != nil {
		return err
	}

	fmt.Printf("Removed item %s.\n", args[0])
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.Store().Refresh(cmd.Context()); err != nil {
		return err
	}
	if err := a.Store().ClearCart(cmd.Context()); err != nil {
		return err
	}

	fmt.Println("Cart cleared.")
	return nil
}

func printCart(cart *domain.Cart) {
	if len(cart.Items) == 0 {
		fmt.Println("Your cart is empty.")
		return
	}

	fmt.Printf("%-22s %-14s %-26s %8s %6s\n", "ITEM ID", "PRODUCT", "NAME", "PRICE", "QTY")
	for _, item := range cart.Items {
		fmt.Printf("%-22s %-14s %-26s %8s %6d\n",
			item.ID,
			item.ProductID,
			truncate(item.ProductName, 26),
			formatCents(item.ProductPrice),
			item.Quantity,
		)
	}
	fmt.Printf("\n%d item(s), total %s\n", cart.TotalItems(), formatCents(cart.TotalPrice()))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
