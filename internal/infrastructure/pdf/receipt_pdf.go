// Package pdf representa el cupom en PDF de 80 mm con el mismo texto que sale
// en la térmica, para reimpresión en impresoras comunes o envío por WhatsApp.
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/farmacia-pos/internal/application/ports"
)

var _ ports.ReceiptPDF = (*ReceiptGenerator)(nil)

const (
	paperWidthMM = 80
	marginMM     = 3
	lineHeightMM = 3.5
	titleHeight  = 6
)

var colorGray = &props.Color{Red: 100, Green: 100, Blue: 100}

// ReceiptGenerator implementa ports.ReceiptPDF usando Maroto v2.
type ReceiptGenerator struct {
	fontSize float64
}

// NewReceiptGenerator 7 pt en courier deja 48 columnas dentro de 74 mm útiles.
func NewReceiptGenerator() *ReceiptGenerator { return &ReceiptGenerator{fontSize: 7} }

// Render arma una página del alto justo para las líneas.
func (g *ReceiptGenerator) Render(_ context.Context, title string, lines []string) ([]byte, error) {
	height := float64(2*marginMM+titleHeight+2) + lineHeightMM*float64(len(lines)+1)
	cfg := config.NewBuilder().
		WithDimensions(paperWidthMM, height).
		WithLeftMargin(marginMM).WithRightMargin(marginMM).
		WithTopMargin(marginMM).WithBottomMargin(marginMM).
		WithDefaultFont(&props.Font{Family: fontfamily.Courier, Size: g.fontSize}).
		WithTitle(title, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(row.New(titleHeight).Add(
		text.NewCol(12, title, props.Text{Style: fontstyle.Bold, Size: g.fontSize + 1, Align: align.Center}),
	))
	m.AddRows(line.NewRow(2, props.Line{Color: colorGray, Thickness: 0.2}))
	for _, l := range lines {
		if l == "" {
			l = " "
		}
		m.AddRows(row.New(lineHeightMM).Add(
			text.NewCol(12, l, props.Text{Family: fontfamily.Courier, Size: g.fontSize}),
		))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar cupom: %w", err)
	}
	return doc.GetBytes(), nil
}
