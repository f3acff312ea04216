// Package ledger reúne las reglas del libro de movimientos: cómo una venta se
// abre en filas, cómo se asigna el estado pagado según la forma de pago y cómo
// se calcula lo adeudado en las cuentas fiado.
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/pkg/textutil"
)

// NormalizePaymentType acepta la forma de pago en cualquier capitalización y
// con o sin acento ("Cartão", "pix") y devuelve la constante canónica.
func NormalizePaymentType(s string) (string, error) {
	p := strings.ToUpper(textutil.Fold(strings.TrimSpace(s)))
	switch p {
	case entity.PaymentCash, entity.PaymentCard, entity.PaymentPix, entity.PaymentCredit:
		return p, nil
	case "":
		return "", fmt.Errorf("%w: forma de pago requerida", domain.ErrInvalidInput)
	}
	return "", fmt.Errorf("%w: forma de pago desconocida %q", domain.ErrInvalidInput, s)
}

// IsCredit indica si la forma de pago deja la fila abierta (fiado).
func IsCredit(paymentType string) bool {
	return paymentType == entity.PaymentCredit
}

// Gross cantidad * precio unitario, a dos decimales.
func Gross(qty, unit decimal.Decimal) decimal.Decimal {
	return qty.Mul(unit).Round(2)
}

// LineTotal total de la fila: qty*unit - discount.
func LineTotal(qty, unit, discount decimal.Decimal) (decimal.Decimal, error) {
	if !qty.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if unit.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: precio unitario negativo", domain.ErrInvalidInput)
	}
	if discount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: descuento negativo", domain.ErrInvalidInput)
	}
	gross := Gross(qty, unit)
	if discount.GreaterThan(gross) {
		return decimal.Zero, fmt.Errorf("%w: descuento %s mayor que el valor %s", domain.ErrInvalidInput, discount, gross)
	}
	return gross.Sub(discount).Round(2), nil
}

// DistributeDiscount reparte un descuento de venta entre las líneas en
// proporción a su base. La suma de las partes es exactamente discount y
// ninguna parte supera la base de su línea.
func DistributeDiscount(bases []decimal.Decimal, discount decimal.Decimal) ([]decimal.Decimal, error) {
	shares := make([]decimal.Decimal, len(bases))
	for i := range shares {
		shares[i] = decimal.Zero
	}
	if discount.IsZero() {
		return shares, nil
	}
	if discount.IsNegative() {
		return nil, fmt.Errorf("%w: descuento negativo", domain.ErrInvalidInput)
	}
	total := decimal.Zero
	for _, b := range bases {
		total = total.Add(b)
	}
	if discount.GreaterThan(total) {
		return nil, fmt.Errorf("%w: descuento %s mayor que el total %s", domain.ErrInvalidInput, discount, total)
	}
	if len(bases) == 0 {
		return shares, nil
	}

	allocated := decimal.Zero
	for i := 0; i < len(bases)-1; i++ {
		shares[i] = discount.Mul(bases[i]).Div(total).Round(2)
		allocated = allocated.Add(shares[i])
	}
	last := len(bases) - 1
	shares[last] = discount.Sub(allocated)

	// El redondeo puede dejar la última parte fuera de [0, base]; se corrige
	// moviendo centavos entre líneas.
	diff := decimal.Zero
	if shares[last].IsNegative() {
		diff = shares[last]
		shares[last] = decimal.Zero
	} else if shares[last].GreaterThan(bases[last]) {
		diff = shares[last].Sub(bases[last])
		shares[last] = bases[last]
	}
	for i := last - 1; i >= 0 && !diff.IsZero(); i-- {
		if diff.IsPositive() {
			room := bases[i].Sub(shares[i])
			move := decimal.Min(room, diff)
			shares[i] = shares[i].Add(move)
			diff = diff.Sub(move)
		} else {
			move := decimal.Min(shares[i], diff.Neg())
			shares[i] = shares[i].Sub(move)
			diff = diff.Add(move)
		}
	}
	return shares, nil
}

// ApplyPayment asigna el estado pagado de una fila recién creada según la
// forma de pago: al contado nace pagada con fecha de la venta; fiado nace abierta.
func ApplyPayment(m *entity.Movement, paymentType string, at time.Time) {
	m.PaymentType = paymentType
	if IsCredit(paymentType) {
		m.Paid = false
		m.PaidAt = nil
		m.PaidTotal = decimal.Zero
		return
	}
	paidAt := at
	m.Paid = true
	m.PaidAt = &paidAt
	m.PaidTotal = m.Total
}

// Due monto a cobrar hoy por la fila. Con chargeCurrent usa el precio actual
// del producto en vez del histórico. Filas pagadas no deben nada.
func Due(m *entity.Movement, chargeCurrent bool) decimal.Decimal {
	if m.Paid {
		return decimal.Zero
	}
	if !chargeCurrent {
		return m.Total
	}
	due := Gross(m.Quantity, m.CurrentPrice).Sub(m.Discount)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due.Round(2)
}

// Settle marca la fila como pagada registrando lo efectivamente cobrado.
func Settle(m *entity.Movement, at time.Time, chargeCurrent bool) error {
	if m.Paid {
		return fmt.Errorf("%w: movimiento %s (venta %d)", domain.ErrAlreadyPaid, m.ID, m.Code)
	}
	m.PaidTotal = Due(m, chargeCurrent)
	paidAt := at
	m.Paid = true
	m.PaidAt = &paidAt
	m.UpdatedAt = at
	return nil
}

// Reopen estorna el pago de una fila fiado.
func Reopen(m *entity.Movement, at time.Time) error {
	if !m.Paid {
		return fmt.Errorf("%w: movimiento %s no está pagado", domain.ErrConflict, m.ID)
	}
	if !IsCredit(m.PaymentType) {
		return fmt.Errorf("%w: sólo se estornan pagos de fiado", domain.ErrConflict)
	}
	m.Paid = false
	m.PaidAt = nil
	m.PaidTotal = decimal.Zero
	m.UpdatedAt = at
	return nil
}

// Reprice cambia cantidad, precio y descuento de una fila abierta y recalcula el total.
func Reprice(m *entity.Movement, qty, unit, discount decimal.Decimal, at time.Time) error {
	if m.Paid {
		return fmt.Errorf("%w: movimiento pagado no se edita", domain.ErrAlreadyPaid)
	}
	total, err := LineTotal(qty, unit, discount)
	if err != nil {
		return err
	}
	m.Quantity = qty
	m.UnitPrice = unit
	m.Discount = discount
	m.Total = total
	m.UpdatedAt = at
	return nil
}

// Summarize calcula la cabecera de venta a partir de sus filas.
func Summarize(rows []*entity.Movement) (*entity.Sale, error) {
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	first := rows[0]
	s := &entity.Sale{
		Code:         first.Code,
		Date:         first.CreatedAt,
		ClientID:     first.ClientID,
		ClientName:   first.ClientName,
		EmployeeID:   first.EmployeeID,
		EmployeeName: first.EmployeeName,
		PaymentType:  first.PaymentType,
		Gross:        decimal.Zero,
		Discount:     decimal.Zero,
		Total:        decimal.Zero,
		Open:         decimal.Zero,
		Paid:         true,
	}
	for _, r := range rows {
		if r.Code != s.Code {
			return nil, fmt.Errorf("%w: filas de ventas distintas (%d y %d)", domain.ErrInvalidInput, s.Code, r.Code)
		}
		if r.CreatedAt.After(s.Date) {
			s.Date = r.CreatedAt
		}
		s.Items++
		s.Gross = s.Gross.Add(Gross(r.Quantity, r.UnitPrice))
		s.Discount = s.Discount.Add(r.Discount)
		s.Total = s.Total.Add(r.Total)
		if !r.Paid {
			s.Paid = false
			s.Open = s.Open.Add(r.Total)
		}
	}
	return s, nil
}

// GroupSales agrupa filas por Code y devuelve las cabeceras, más recientes primero.
func GroupSales(rows []*entity.Movement) []*entity.Sale {
	byCode := make(map[int64][]*entity.Movement)
	for _, r := range rows {
		byCode[r.Code] = append(byCode[r.Code], r)
	}
	out := make([]*entity.Sale, 0, len(byCode))
	for _, group := range byCode {
		s, err := Summarize(group)
		if err != nil {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].Code > out[j].Code
		}
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// Balances saldo fiado abierto por cliente, ordenado por nombre.
func Balances(rows []*entity.Movement, chargeCurrent bool) []*entity.ClientBalance {
	byClient := make(map[string]*entity.ClientBalance)
	for _, r := range rows {
		if r.ClientID == "" || !IsCredit(r.PaymentType) {
			continue
		}
		b, ok := byClient[r.ClientID]
		if !ok {
			b = &entity.ClientBalance{
				ClientID:   r.ClientID,
				ClientName: r.ClientName,
				OpenTotal:  decimal.Zero,
				Due:        decimal.Zero,
			}
			byClient[r.ClientID] = b
		}
		if r.Paid {
			if r.PaidAt != nil && (b.LastPayment == nil || r.PaidAt.After(*b.LastPayment)) {
				t := *r.PaidAt
				b.LastPayment = &t
			}
			continue
		}
		b.OpenRows++
		b.OpenTotal = b.OpenTotal.Add(r.Total)
		b.Due = b.Due.Add(Due(r, chargeCurrent))
		if b.OldestSale.IsZero() || r.CreatedAt.Before(b.OldestSale) {
			b.OldestSale = r.CreatedAt
		}
	}
	out := make([]*entity.ClientBalance, 0, len(byClient))
	for _, b := range byClient {
		if b.OpenRows > 0 {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientName < out[j].ClientName })
	return out
}
