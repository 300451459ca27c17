// Package cmd - CLI command: glassquote quote
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"glassquote/core/quote"
	"glassquote/core/rules"
	"glassquote/core/types"
	"glassquote/internal/config"
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Compute an itemized quote for one piece",
	Long: `Compute a price quote for a single piece of glass or mirror.

Area, perimeter, and corner count come from the caller; the engine does
not derive them from raw dimensions. The quote is priced against the
reference price table and the active pricing formula.`,
	RunE: runQuote,
}

var (
	quoteThickness  string
	quoteType       string
	quoteShape      string
	quoteArea       float64
	quotePerimeter  float64
	quoteCorners    int
	quoteClipSize   string
	quotePolish     bool
	quoteBevel      bool
	quoteTempered   bool
	quoteContractor bool
	quoteTimeout    time.Duration
)

func init() {
	quoteCmd.Flags().StringVar(&quoteThickness, "thickness", "", `glass thickness (1/8, 3/16, 1/4, 3/8, 1/2)`)
	quoteCmd.Flags().StringVar(&quoteType, "type", "clear", "glass type (clear, bronze, gray, mirror)")
	quoteCmd.Flags().StringVar(&quoteShape, "shape", "rectangle", "shape (rectangle, circle, custom)")
	quoteCmd.Flags().Float64Var(&quoteArea, "area", 0, "piece area in square feet")
	quoteCmd.Flags().Float64Var(&quotePerimeter, "perimeter", 0, "edge perimeter in inches")
	quoteCmd.Flags().IntVar(&quoteCorners, "corners", 0, "number of clipped corners")
	quoteCmd.Flags().StringVar(&quoteClipSize, "clip-size", string(types.ClipUnderInch), "clip size (under_1in, over_1in)")
	quoteCmd.Flags().BoolVar(&quotePolish, "polish", false, "polished edges")
	quoteCmd.Flags().BoolVar(&quoteBevel, "bevel", false, "beveled edges")
	quoteCmd.Flags().BoolVar(&quoteTempered, "tempered", false, "tempered glass")
	quoteCmd.Flags().BoolVar(&quoteContractor, "contractor", false, "contractor pricing")
	quoteCmd.Flags().DurationVar(&quoteTimeout, "timeout", 30*time.Second, "timeout for the calculation")

	quoteCmd.MarkFlagRequired("thickness")
	quoteCmd.MarkFlagRequired("area")
	quoteCmd.MarkFlagRequired("perimeter")
}

func runQuote(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), quoteTimeout)
	defer cancel()

	store, configs, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	cat, err := store.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	cfg, err := configs.GetActive(ctx)
	if err != nil {
		return err
	}

	spec := types.GlassSpec{
		Thickness: types.Thickness(quoteThickness),
		Type:      types.GlassType(quoteType),
	}
	sel := types.EdgeWorkSelection{
		Shape:          types.Shape(quoteShape),
		Polish:         quotePolish,
		Bevel:          quoteBevel,
		ClippedCorners: quoteCorners > 0,
		ClipSize:       types.ClipSize(quoteClipSize),
		Tempered:       quoteTempered,
		Contractor:     quoteContractor,
	}
	geom := types.Geometry{
		AreaSqFt:    quoteArea,
		PerimeterIn: quotePerimeter,
		CornerCount: quoteCorners,
	}

	minArea := decimal.NewFromFloat(config.Get().Pricing.MinimumBillableSqFt)
	engine := quote.NewEngine(cat, minArea)

	result, err := engine.CalculateQuote(spec, sel, geom, cfg)
	if err != nil {
		if violation, ok := err.(*rules.Violation); ok {
			fmt.Printf("Not quotable: %s\n", violation.Message)
			return nil
		}
		return err
	}

	printQuote(result)
	return nil
}

func printQuote(r *quote.QuoteResult) {
	fmt.Printf("Quote: %s\" %s, %.2f sq ft, %.1f in perimeter\n\n",
		r.Spec.Thickness, r.Spec.Type, r.Geometry.AreaSqFt, r.Geometry.PerimeterIn)

	printLine := func(label string, amount decimal.Decimal) {
		if !amount.IsZero() {
			fmt.Printf("  %-20s $%s\n", label, amount.StringFixed(2))
		}
	}
	printLine("Base", r.Breakdown.Base)
	printLine("Polish", r.Breakdown.Polish)
	printLine("Bevel", r.Breakdown.Bevel)
	printLine("Clipped corners", r.Breakdown.Corners)
	printLine("Tempered markup", r.Breakdown.TemperedMarkup)
	printLine("Shape markup", r.Breakdown.ShapeMarkup)
	if !r.Breakdown.ContractorDiscount.IsZero() {
		fmt.Printf("  %-20s -$%s\n", "Contractor discount", r.Breakdown.ContractorDiscount.StringFixed(2))
	}

	fmt.Printf("\n  %-20s $%s\n", "Subtotal", r.Subtotal.StringFixed(2))
	fmt.Printf("  %-20s $%s %s\n", "Quote price", r.FinalPrice.StringFixed(2), r.Currency)

	for _, warning := range r.Warnings {
		fmt.Printf("\n  warning: %s\n", warning.Message)
	}
}
