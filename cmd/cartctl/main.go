// cartctl is a command-line client for the miria cart API. It keeps an
// anonymous cart in local storage and switches to the remote cart after
// login, merging the anonymous contents exactly once.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samko5sam/miria/internal/app"
	"github.com/samko5sam/miria/internal/config"
	"github.com/samko5sam/miria/pkg/logger"
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "cartctl",
	Short: "Manage your miria shopping cart",
	Long: `cartctl manages a miria marketplace shopping cart.

Anonymous carts are kept in local storage. After 'cartctl login' the
anonymous cart is merged into your account cart and all commands operate
against the remote API.`,
	SilenceUsage: true,
}

// newApp loads configuration and wires the cart client.
func newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New("cartctl", cfg.LogLevel)
	cmd.SetContext(logger.NewContext(cmd.Context(), log))

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return nil, fmt.Errorf("initialize cart client: %w", err)
	}
	return a, nil
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
