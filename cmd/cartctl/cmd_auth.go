package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <user-id> <token>",
	Short: "Log in and merge the anonymous cart",
	Long: `Log in with a bearer token issued by the miria API.

The anonymous cart is merged into your account cart exactly once, then
discarded. A failed merge is reported but does not block login.`,
	Args: cobra.ExactArgs(2),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and return to the anonymous cart",
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session and cart state",
	RunE:  runStatus,
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.Login(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}

	cart := a.Store().GetCart()
	fmt.Printf("Logged in as %s. Your cart holds %d item(s).\n", args[0], cart.TotalItems())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.Logout(cmd.Context()); err != nil {
		return err
	}

	fmt.Println("Logged out. Using the anonymous cart.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	sess := a.Store().Session()
	if sess.Authenticated() {
		fmt.Printf("Session: authenticated as %s\n", sess.VisitorID)
	} else {
		fmt.Println("Session: anonymous")
	}
	fmt.Printf("Store state: %s\n", a.Store().State())

	if err := a.Store().Refresh(cmd.Context()); err != nil {
		return fmt.Errorf("fetch cart: %w", err)
	}
	cart := a.Store().GetCart()
	fmt.Printf("Cart: %d item(s), total %s\n", cart.TotalItems(), formatCents(cart.TotalPrice()))
	return nil
}
