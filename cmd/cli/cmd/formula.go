// Package cmd - CLI commands: glassquote formula
package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"glassquote/core/formula"
)

var formulaCmd = &cobra.Command{
	Use:   "formula",
	Short: "Manage the final pricing formula",
	Long: `Commands for inspecting and updating the formula that maps a quote
subtotal to the final price. Every accepted update is audit-logged with
the previous and new configuration.`,
}

var formulaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active formula configuration",
	RunE:  runFormulaShow,
}

var formulaSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the formula configuration",
	Long: `Update the active formula. The new configuration is validated before
acceptance; custom expressions must stay inside the closed grammar
(numbers, total, + - * /, parentheses, abs, min, max, round).

Examples:
  glassquote formula set --mode divisor --divisor 0.28 --actor jane
  glassquote formula set --mode multiplier --multiplier 3.5 --actor jane
  glassquote formula set --mode custom --expression "max(total * 3, 100)" --actor jane
  glassquote formula set --mode divisor --divisor 0.25 --disable bevel,corners --actor jane`,
	RunE: runFormulaSet,
}

var formulaValidateCmd = &cobra.Command{
	Use:   "validate <expression>",
	Short: "Validate a custom expression without saving it",
	Args:  cobra.ExactArgs(1),
	RunE:  runFormulaValidate,
}

var formulaAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List formula configuration changes, newest first",
	RunE:  runFormulaAudit,
}

var (
	setMode       string
	setDivisor    string
	setMultiplier string
	setExpression string
	setActor      string
	setDisable    []string
	auditLimit    int
)

func init() {
	formulaCmd.AddCommand(formulaShowCmd)
	formulaCmd.AddCommand(formulaSetCmd)
	formulaCmd.AddCommand(formulaValidateCmd)
	formulaCmd.AddCommand(formulaAuditCmd)

	formulaSetCmd.Flags().StringVar(&setMode, "mode", "", "formula mode (divisor, multiplier, custom)")
	formulaSetCmd.Flags().StringVar(&setDivisor, "divisor", "", "divisor value")
	formulaSetCmd.Flags().StringVar(&setMultiplier, "multiplier", "", "multiplier value")
	formulaSetCmd.Flags().StringVar(&setExpression, "expression", "", "custom expression")
	formulaSetCmd.Flags().StringVar(&setActor, "actor", "", "who is making the change")
	formulaSetCmd.Flags().StringSliceVar(&setDisable, "disable", nil,
		"components to disable (base, polish, bevel, corners, tempered, shape, contractor)")
	formulaSetCmd.MarkFlagRequired("mode")
	formulaSetCmd.MarkFlagRequired("actor")

	formulaAuditCmd.Flags().IntVar(&auditLimit, "limit", 20, "maximum entries to show (0 for all)")
}

func runFormulaShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, configs, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	cfg, err := configs.GetActive(ctx)
	if err != nil {
		return err
	}

	printConfig(cfg)
	return nil
}

func runFormulaSet(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := formula.DefaultConfig()
	cfg.Mode = formula.Mode(setMode)
	cfg.CustomExpression = setExpression

	if setDivisor != "" {
		v, err := decimal.NewFromString(setDivisor)
		if err != nil {
			return fmt.Errorf("malformed divisor %q", setDivisor)
		}
		cfg.DivisorValue = v
	}
	if setMultiplier != "" {
		v, err := decimal.NewFromString(setMultiplier)
		if err != nil {
			return fmt.Errorf("malformed multiplier %q", setMultiplier)
		}
		cfg.MultiplierValue = v
	}

	for _, name := range setDisable {
		switch strings.TrimSpace(name) {
		case "base":
			cfg.Components.Base = false
		case "polish":
			cfg.Components.Polish = false
		case "bevel":
			cfg.Components.Bevel = false
		case "corners":
			cfg.Components.Corners = false
		case "tempered":
			cfg.Components.TemperedMarkup = false
		case "shape":
			cfg.Components.ShapeMarkup = false
		case "contractor":
			cfg.Components.ContractorDiscount = false
		default:
			return fmt.Errorf("unknown component %q", name)
		}
	}

	store, configs, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	entry, err := configs.Update(ctx, cfg, setActor)
	if err != nil {
		return err
	}

	fmt.Printf("Formula updated (audit %s)\n\n", entry.ID)
	printConfig(cfg)
	return nil
}

func runFormulaValidate(cmd *cobra.Command, args []string) error {
	if err := formula.ValidateExpression(args[0]); err != nil {
		fmt.Printf("invalid: %v\n", err)
		return nil
	}
	fmt.Println("valid")
	return nil
}

func runFormulaAudit(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, configs, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := configs.Audit(ctx, auditLimit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No formula changes recorded.")
		return nil
	}

	for _, entry := range entries {
		fmt.Printf("%s  %s  %s -> %s\n",
			entry.CreatedAt.Format(time.RFC3339), entry.Actor,
			describeConfig(entry.Previous), describeConfig(entry.New))
	}
	return nil
}

func printConfig(cfg formula.Config) {
	fmt.Printf("Mode:       %s\n", cfg.Mode)
	switch cfg.Mode {
	case formula.ModeDivisor:
		fmt.Printf("Divisor:    %s\n", cfg.DivisorValue)
	case formula.ModeMultiplier:
		fmt.Printf("Multiplier: %s\n", cfg.MultiplierValue)
	case formula.ModeCustom:
		fmt.Printf("Expression: %s\n", cfg.CustomExpression)
	}

	var disabled []string
	if !cfg.Components.Base {
		disabled = append(disabled, "base")
	}
	if !cfg.Components.Polish {
		disabled = append(disabled, "polish")
	}
	if !cfg.Components.Bevel {
		disabled = append(disabled, "bevel")
	}
	if !cfg.Components.Corners {
		disabled = append(disabled, "corners")
	}
	if !cfg.Components.TemperedMarkup {
		disabled = append(disabled, "tempered")
	}
	if !cfg.Components.ShapeMarkup {
		disabled = append(disabled, "shape")
	}
	if !cfg.Components.ContractorDiscount {
		disabled = append(disabled, "contractor")
	}
	if len(disabled) > 0 {
		fmt.Printf("Disabled:   %s\n", strings.Join(disabled, ", "))
	}
}

func describeConfig(cfg formula.Config) string {
	switch cfg.Mode {
	case formula.ModeDivisor:
		return fmt.Sprintf("divisor %s", cfg.DivisorValue)
	case formula.ModeMultiplier:
		return fmt.Sprintf("multiplier %s", cfg.MultiplierValue)
	case formula.ModeCustom:
		return fmt.Sprintf("custom %q", cfg.CustomExpression)
	default:
		return string(cfg.Mode)
	}
}
