// Package cli implements catalogctl, an offline tool for checking product
// payloads against the catalog rules.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/angelmondragon/catalog-admin-backend/pkg/catalog"
)

// ErrInvalid is returned by validate when the payload has field errors.
// main maps it to exit status 1 without printing it again.
var ErrInvalid = errors.New("product is invalid")

const envPrefix = "CATALOGCTL"

// NewRootCommand wires the catalogctl command tree. Flags can also be set
// through CATALOGCTL_* environment variables.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Sanitize, validate and price catalog products offline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg := v.GetString("config"); cfg != "" {
				v.SetConfigFile(cfg)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("read config: %w", err)
				}
			}
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().String("config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().Bool("compact", false, "print JSON without indentation")
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("compact", root.PersistentFlags().Lookup("compact"))

	root.AddCommand(
		newValidateCommand(v),
		newSanitizeCommand(v),
		newSlugifyCommand(),
		newQuoteCommand(v),
	)
	return root
}

func newValidateCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file.json>",
		Short: "Validate a product payload; exits 1 with the error map when invalid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product, err := readProduct(args[0])
			if err != nil {
				return err
			}
			mode := catalog.ParseMode(v.GetString("mode"))
			errs := catalog.Validate(product, mode)
			if errs.HasErrors() {
				if err := writeJSON(cmd.OutOrStdout(), v, map[string]any{"valid": false, "errors": errs}); err != nil {
					return err
				}
				return ErrInvalid
			}
			return writeJSON(cmd.OutOrStdout(), v, map[string]any{"valid": true, "mode": mode})
		},
	}
	cmd.Flags().String("mode", string(catalog.ModeCreate), "validation mode: create|update")
	_ = v.BindPFlag("mode", cmd.Flags().Lookup("mode"))
	return cmd
}

func newSanitizeCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "sanitize <file.json>",
		Short: "Print the canonical form of a product payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product, err := readProduct(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), v, product)
		},
	}
}

func newSlugifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "slugify <text...>",
		Short: "Derive a URL slug from text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), catalog.Slugify(strings.Join(args, " ")))
			return err
		},
	}
}

func newQuoteCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price an order quantity against a discount ladder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			qty := v.GetFloat64("qty")
			if qty <= 0 {
				return errors.New("--qty must be greater than 0")
			}
			price := catalog.Price{Currency: strings.ToUpper(v.GetString("currency"))}
			if mrp := v.GetFloat64("mrp"); mrp > 0 {
				price.MRP = catalog.Float(mrp)
			} else {
				return errors.New("--mrp must be greater than 0")
			}
			if sale := v.GetFloat64("sale"); sale > 0 {
				price.Sale = catalog.Float(sale)
			}

			var tiers []catalog.DiscountTier
			if path := v.GetString("tiers"); path != "" {
				parsed, err := readTiers(path)
				if err != nil {
					return err
				}
				if violation := catalog.ValidateDiscounts(parsed); violation != nil {
					return fmt.Errorf("tiers: %s", violation.Message)
				}
				tiers = parsed
			}
			return writeJSON(cmd.OutOrStdout(), v, catalog.QuoteFor(price, tiers, qty))
		},
	}
	cmd.Flags().Float64("mrp", 0, "list price")
	cmd.Flags().Float64("sale", 0, "sale price")
	cmd.Flags().String("currency", "USD", "ISO 4217 currency code")
	cmd.Flags().Float64("qty", 0, "order quantity")
	cmd.Flags().String("tiers", "", "JSON file with an array of discount tiers")
	for _, name := range []string{"mrp", "sale", "currency", "qty", "tiers"} {
		_ = v.BindPFlag(name, cmd.Flags().Lookup(name))
	}
	return cmd
}

func readProduct(path string) (catalog.Product, error) {
	data, err := readInput(path)
	if err != nil {
		return catalog.Product{}, err
	}
	return catalog.SanitizeJSON(data)
}

// readTiers accepts either a bare array or an object with quantityDiscounts.
func readTiers(path string) ([]catalog.DiscountTier, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		trimmed = `{"quantityDiscounts":` + trimmed + `}`
	}
	product, err := catalog.SanitizeJSON([]byte(trimmed))
	if err != nil {
		return nil, fmt.Errorf("parse tiers: %w", err)
	}
	return product.QuantityDiscounts, nil
}

// readInput reads path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v *viper.Viper, value any) error {
	var (
		data []byte
		err  error
	)
	if v.GetBool("compact") {
		data, err = json.Marshal(value)
	} else {
		data, err = json.MarshalIndent(value, "", "  ")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
