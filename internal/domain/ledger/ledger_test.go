package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/ledger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNormalizePaymentType(t *testing.T) {
	cases := map[string]string{
		"dinheiro": entity.PaymentCash,
		" Cartão ": entity.PaymentCard,
		"pix":      entity.PaymentPix,
		"FIADO":    entity.PaymentCredit,
	}
	for in, want := range cases {
		got, err := ledger.NormalizePaymentType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ledger.NormalizePaymentType("cheque")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = ledger.NormalizePaymentType("")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestLineTotal(t *testing.T) {
	total, err := ledger.LineTotal(d("3"), d("4.99"), d("0.97"))
	require.NoError(t, err)
	assert.True(t, d("14").Equal(total), total.String())

	_, err = ledger.LineTotal(d("0"), d("1"), decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = ledger.LineTotal(d("1"), d("-1"), decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = ledger.LineTotal(d("1"), d("5"), d("5.01"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = ledger.LineTotal(d("1"), d("5"), d("-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDistributeDiscount_SumaExacta(t *testing.T) {
	bases := []decimal.Decimal{d("10.00"), d("10.00"), d("10.00")}
	shares, err := ledger.DistributeDiscount(bases, d("1.00"))
	require.NoError(t, err)

	sum := decimal.Zero
	for i, s := range shares {
		assert.False(t, s.IsNegative())
		assert.True(t, s.LessThanOrEqual(bases[i]))
		sum = sum.Add(s)
	}
	assert.True(t, d("1.00").Equal(sum), sum.String())
	assert.True(t, d("0.33").Equal(shares[0]))
	assert.True(t, d("0.34").Equal(shares[2]))
}

func TestDistributeDiscount_LineaChicaNoExcedeSuBase(t *testing.T) {
	bases := []decimal.Decimal{d("99.99"), d("0.01")}
	shares, err := ledger.DistributeDiscount(bases, d("100.00"))
	require.NoError(t, err)
	assert.True(t, d("99.99").Equal(shares[0]))
	assert.True(t, d("0.01").Equal(shares[1]))

	shares, err = ledger.DistributeDiscount([]decimal.Decimal{d("0.05"), d("0.05"), d("0.01")}, d("0.10"))
	require.NoError(t, err)
	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s)
	}
	assert.True(t, d("0.10").Equal(sum))
	assert.True(t, shares[2].LessThanOrEqual(d("0.01")))
}

func TestDistributeDiscount_Errores(t *testing.T) {
	_, err := ledger.DistributeDiscount([]decimal.Decimal{d("1")}, d("2"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = ledger.DistributeDiscount([]decimal.Decimal{d("1")}, d("-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	shares, err := ledger.DistributeDiscount([]decimal.Decimal{d("1"), d("2")}, decimal.Zero)
	require.NoError(t, err)
	assert.Len(t, shares, 2)
}

func TestApplyPayment_PorFormaDePago(t *testing.T) {
	at := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)
	for _, pt := range []string{entity.PaymentCash, entity.PaymentCard, entity.PaymentPix} {
		m := &entity.Movement{Total: d("12.50")}
		ledger.ApplyPayment(m, pt, at)
		assert.True(t, m.Paid, pt)
		require.NotNil(t, m.PaidAt)
		assert.True(t, at.Equal(*m.PaidAt))
		assert.True(t, d("12.50").Equal(m.PaidTotal))
	}

	m := &entity.Movement{Total: d("12.50")}
	ledger.ApplyPayment(m, entity.PaymentCredit, at)
	assert.False(t, m.Paid)
	assert.Nil(t, m.PaidAt)
	assert.True(t, m.PaidTotal.IsZero())
	assert.Equal(t, entity.PaymentCredit, m.PaymentType)
}

func openRow() *entity.Movement {
	return &entity.Movement{
		ID:           "m1",
		Code:         7,
		Quantity:     d("2"),
		UnitPrice:    d("10.00"),
		CurrentPrice: d("12.00"),
		Discount:     d("1.00"),
		Total:        d("19.00"),
		PaymentType:  entity.PaymentCredit,
	}
}

func TestDue_PrecioActualVsHistorico(t *testing.T) {
	m := openRow()
	assert.True(t, d("23.00").Equal(ledger.Due(m, true)))
	assert.True(t, d("19.00").Equal(ledger.Due(m, false)))

	m.CurrentPrice = d("0.40")
	assert.True(t, ledger.Due(m, true).IsZero(), "nunca negativo")

	m.Paid = true
	assert.True(t, ledger.Due(m, false).IsZero())
}

func TestSettleYReopen(t *testing.T) {
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	m := openRow()

	require.NoError(t, ledger.Settle(m, at, true))
	assert.True(t, m.Paid)
	assert.True(t, d("23.00").Equal(m.PaidTotal))
	require.NotNil(t, m.PaidAt)

	err := ledger.Settle(m, at, true)
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)

	require.NoError(t, ledger.Reopen(m, at))
	assert.False(t, m.Paid)
	assert.Nil(t, m.PaidAt)
	assert.True(t, m.PaidTotal.IsZero())

	assert.ErrorIs(t, ledger.Reopen(m, at), domain.ErrConflict)

	cash := &entity.Movement{PaymentType: entity.PaymentCash, Paid: true}
	assert.ErrorIs(t, ledger.Reopen(cash, at), domain.ErrConflict)
}

func TestReprice(t *testing.T) {
	m := openRow()
	require.NoError(t, ledger.Reprice(m, d("3"), d("10.00"), d("0"), time.Now()))
	assert.True(t, d("30.00").Equal(m.Total))

	m.Paid = true
	assert.ErrorIs(t, ledger.Reprice(m, d("1"), d("1"), d("0"), time.Now()), domain.ErrAlreadyPaid)
}

func TestSummarize(t *testing.T) {
	t0 := time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)
	rows := []*entity.Movement{
		{Code: 3, Quantity: d("1"), UnitPrice: d("10"), Discount: d("1"), Total: d("9"), Paid: true, CreatedAt: t0, ClientName: "Ana", PaymentType: entity.PaymentCredit},
		{Code: 3, Quantity: d("2"), UnitPrice: d("5"), Discount: d("0"), Total: d("10"), Paid: false, CreatedAt: t0.Add(time.Minute)},
	}
	s, err := ledger.Summarize(rows)
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.Code)
	assert.Equal(t, 2, s.Items)
	assert.True(t, d("20").Equal(s.Gross))
	assert.True(t, d("1").Equal(s.Discount))
	assert.True(t, d("19").Equal(s.Total))
	assert.True(t, d("10").Equal(s.Open))
	assert.False(t, s.Paid)
	assert.True(t, t0.Add(time.Minute).Equal(s.Date))
	assert.Equal(t, "Ana", s.ClientName)

	_, err = ledger.Summarize(nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rows = append(rows, &entity.Movement{Code: 4})
	_, err = ledger.Summarize(rows)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGroupSalesYBalances(t *testing.T) {
	t0 := time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)
	paidAt := t0.Add(48 * time.Hour)
	rows := []*entity.Movement{
		{Code: 1, ClientID: "c1", ClientName: "Bia", Quantity: d("1"), UnitPrice: d("5"), CurrentPrice: d("6"), Discount: d("0"), Total: d("5"), PaymentType: entity.PaymentCredit, CreatedAt: t0},
		{Code: 1, ClientID: "c1", ClientName: "Bia", Quantity: d("1"), UnitPrice: d("3"), CurrentPrice: d("3"), Discount: d("0"), Total: d("3"), PaymentType: entity.PaymentCredit, Paid: true, PaidAt: &paidAt, CreatedAt: t0},
		{Code: 2, ClientID: "c2", ClientName: "Ana", Quantity: d("2"), UnitPrice: d("4"), CurrentPrice: d("4"), Discount: d("0"), Total: d("8"), PaymentType: entity.PaymentCredit, CreatedAt: t0.Add(time.Hour)},
		{Code: 3, Quantity: d("1"), UnitPrice: d("9"), CurrentPrice: d("9"), Discount: d("0"), Total: d("9"), PaymentType: entity.PaymentCash, Paid: true, CreatedAt: t0.Add(2 * time.Hour)},
	}

	sales := ledger.GroupSales(rows)
	require.Len(t, sales, 3)
	assert.Equal(t, int64(3), sales[0].Code, "más reciente primero")
	assert.Equal(t, int64(1), sales[2].Code)

	balances := ledger.Balances(rows, true)
	require.Len(t, balances, 2)
	assert.Equal(t, "Ana", balances[0].ClientName)
	assert.Equal(t, "Bia", balances[1].ClientName)
	assert.Equal(t, 1, balances[1].OpenRows)
	assert.True(t, d("5").Equal(balances[1].OpenTotal))
	assert.True(t, d("6").Equal(balances[1].Due))
	require.NotNil(t, balances[1].LastPayment)
	assert.True(t, paidAt.Equal(*balances[1].LastPayment))
}
