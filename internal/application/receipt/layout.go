package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/ledger"
	"github.com/jhoicas/farmacia-pos/pkg/config"
	"github.com/jhoicas/farmacia-pos/pkg/escpos"
)

// DateLayout formato de fecha impreso.
const DateLayout = "02/01/2006 15:04"

const trailingFeed = 3

func header(b *escpos.Builder, store config.StoreConfig) {
	b.Init().Align(escpos.AlignCenter).Bold(true).Line(store.Name).Bold(false)
	if store.Address != "" {
		b.Line(store.Address)
	}
	if store.Phone != "" {
		b.Line("FONE: " + store.Phone)
	}
	if store.CNPJ != "" {
		b.Line("CNPJ: " + store.CNPJ)
	}
	b.Align(escpos.AlignLeft).Separator('-')
}

func title(b *escpos.Builder, s string) {
	b.Align(escpos.AlignCenter).Bold(true).Line(s).Bold(false).Align(escpos.AlignLeft)
}

// BuildSale arma el cupom de venta. drawer abre la gaveta en ventas en dinero.
func BuildSale(width int, store config.StoreConfig, sale *entity.Sale, rows []*entity.Movement, drawer bool) *escpos.Builder {
	b := escpos.New(width)
	header(b, store)
	title(b, "CUPOM NAO FISCAL")

	client := sale.ClientName
	if client == "" {
		client = entity.CounterClientName
	}
	b.Columns(fmt.Sprintf("VENDA %06d", sale.Code), sale.Date.Format(DateLayout)).
		Line("VENDEDOR: " + sale.EmployeeName).
		Line("CLIENTE: " + client).
		Separator('-')

	for _, r := range rows {
		desc := r.ProductDescription
		if r.ProductGeneric {
			desc += " (G)"
		}
		b.Line(desc).
			Columns("  "+FormatQty(r.Quantity)+" x "+FormatBRL(r.UnitPrice), FormatBRL(r.Total))
		if r.Discount.IsPositive() {
			b.Columns("  DESCONTO", FormatBRL(r.Discount.Neg()))
		}
	}

	b.Separator('-').Columns("SUBTOTAL", FormatBRL(sale.Gross))
	if sale.Discount.IsPositive() {
		b.Columns("DESCONTO", FormatBRL(sale.Discount.Neg()))
	}
	b.Bold(true).Columns("TOTAL", FormatBRL(sale.Total)).Bold(false).
		Columns("PAGAMENTO", sale.PaymentType)
	if ledger.IsCredit(sale.PaymentType) && sale.Open.IsPositive() {
		b.Bold(true).Columns("A PAGAR", FormatBRL(sale.Open)).Bold(false)
		signature(b)
	}
	footer(b, store)
	if drawer && sale.PaymentType == entity.PaymentCash {
		b.Pulse()
	}
	return b
}

// BuildPayment arma el comprobante de pago de filas fiado.
func BuildPayment(width int, store config.StoreConfig, clientName string, paidAt time.Time, rows []*entity.Movement) *escpos.Builder {
	b := escpos.New(width)
	header(b, store)
	title(b, "COMPROVANTE DE PAGAMENTO")
	b.Line("CLIENTE: " + clientName).
		Line("DATA: " + paidAt.Format(DateLayout)).
		Separator('-')

	total := decimal.Zero
	for _, r := range rows {
		b.Columns(fmt.Sprintf("%d %s", r.Code, r.ProductDescription), FormatBRL(r.PaidTotal))
		total = total.Add(r.PaidTotal)
	}
	b.Separator('-').
		Bold(true).Columns("TOTAL PAGO", FormatBRL(total)).Bold(false)
	signature(b)
	footer(b, store)
	return b
}

func signature(b *escpos.Builder) {
	w := b.Width() - 8
	if w < 8 {
		w = b.Width()
	}
	b.Feed(2).Align(escpos.AlignCenter).Line(strings.Repeat("_", w)).Line("ASSINATURA").Align(escpos.AlignLeft)
}

func footer(b *escpos.Builder, store config.StoreConfig) {
	if store.Footer != "" {
		b.Separator('-').Align(escpos.AlignCenter).Line(store.Footer).Align(escpos.AlignLeft)
	}
	b.Feed(trailingFeed).Cut()
}
