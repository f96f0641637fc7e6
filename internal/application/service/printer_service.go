package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/internal/domain/enum"
	"github.com/sangkips/feedledger-api/internal/domain/repository"
	"github.com/sangkips/feedledger-api/pkg/apperror"
	"github.com/sangkips/feedledger-api/pkg/printer"
	"github.com/shopspring/decimal"
)

// PrinterService builds receipts from ledger postings and sends them to the
// receipt printer.
type PrinterService struct {
	printer         printer.Printer
	transactionRepo repository.TransactionRepository
	wholesaleRepo   repository.WholesaleTransactionRepository
	header          entity.ReceiptHeader
	currency        string
	width           int
	printerType     string
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	transactionRepo repository.TransactionRepository,
	wholesaleRepo repository.WholesaleTransactionRepository,
	header entity.ReceiptHeader,
	currency string,
	width int,
	printerType string,
) *PrinterService {
	return &PrinterService{
		printer:         p,
		transactionRepo: transactionRepo,
		wholesaleRepo:   wholesaleRepo,
		header:          header,
		currency:        currency,
		width:           width,
		printerType:     printerType,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
	Width      int    `json:"width"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
		Width:      s.width,
	}
}

// BuildReceipt composes the receipt for a posting. Discount postings have
// no receipt.
func (s *PrinterService) BuildReceipt(ctx context.Context, transactionID uuid.UUID) (*entity.Receipt, error) {
	t, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	if t == nil {
		return nil, apperror.NewNotFoundError("Transaction")
	}
	if !t.Type.HasReceipt() {
		return nil, apperror.NewInvalidArgumentError(fmt.Sprintf("%s transactions have no receipt", t.Type))
	}

	receipt := &entity.Receipt{
		Header:        s.header,
		ReferenceNo:   referenceFor(t),
		Date:          t.CreatedAt.Local().Format("2006-01-02 15:04"),
		Notes:         t.Notes,
		Amount:        t.Amount.Abs(),
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		Currency:      s.currency,
	}
	if t.Customer != nil {
		receipt.Customer = t.Customer.Name
		if t.Customer.Phone != nil {
			receipt.CustomerPhone = *t.Customer.Phone
		}
	}

	switch t.Type {
	case enum.TransactionTypeSale:
		receipt.Title = "SALES RECEIPT"
		if t.PaymentMethod != nil {
			receipt.PaymentMethod = t.PaymentMethod.String()
		}
		if t.Sale != nil {
			for _, item := range t.Sale.Items {
				receipt.Items = append(receipt.Items, entity.ReceiptItem{
					Name:      item.ProductName,
					Quantity:  item.Quantity,
					UnitPrice: item.UnitPrice,
					Total:     item.LineTotal,
				})
			}
		}
	case enum.TransactionTypeDeposit:
		receipt.Title = "DEPOSIT RECEIPT"
	case enum.TransactionTypeWithdrawal:
		receipt.Title = "WITHDRAWAL RECEIPT"
	case enum.TransactionTypeBuyBack:
		receipt.Title = "BUY BACK RECEIPT"
		bb := &entity.ReceiptBuyBack{
			Weight:     t.BuyBackWeight.Decimal,
			PricePerKg: t.BuyBackPricePerKg.Decimal,
		}
		if t.BuyBackQuantity != nil {
			bb.Quantity = *t.BuyBackQuantity
		}
		if t.ReferenceName != nil {
			bb.ReferenceName = *t.ReferenceName
		}
		receipt.BuyBack = bb
	}

	return receipt, nil
}

// BuildWholesaleReceipt composes the receipt for a wholesale posting.
func (s *PrinterService) BuildWholesaleReceipt(ctx context.Context, transactionID uuid.UUID) (*entity.Receipt, error) {
	t, err := s.wholesaleRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("load wholesale transaction: %w", err)
	}
	if t == nil {
		return nil, apperror.NewNotFoundError("Wholesale transaction")
	}

	receipt := &entity.Receipt{
		Header:        s.header,
		ReferenceNo:   fmt.Sprintf("WS-%s-%d", strings.ToUpper(t.BuyerID.String()[:4]), t.Sequence),
		Date:          t.CreatedAt.Local().Format("2006-01-02 15:04"),
		Notes:         t.Notes,
		Amount:        t.Amount.Abs(),
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		Currency:      s.currency,
	}
	if t.Buyer != nil {
		receipt.Customer = t.Buyer.Name
		if t.Buyer.BusinessName != nil {
			receipt.Customer += " (" + *t.Buyer.BusinessName + ")"
		}
		receipt.CustomerPhone = t.Buyer.Phone
	}

	switch t.Type {
	case enum.TransactionTypeWholesaleSale:
		receipt.Title = "WHOLESALE RECEIPT"
		if t.PaymentMethod != nil {
			receipt.PaymentMethod = t.PaymentMethod.String()
		}
		for _, item := range t.Items {
			line := entity.ReceiptItem{Name: item.Name, Quantity: item.Quantity, Total: item.Price}
			if item.Weight.IsPositive() {
				weight := item.Weight
				line.Weight = &weight
			}
			if item.PricePerKg.Valid {
				pricePerKg := item.PricePerKg.Decimal
				line.PricePerKg = &pricePerKg
			}
			receipt.Items = append(receipt.Items, line)
		}
	case enum.TransactionTypeDeposit:
		receipt.Title = "DEPOSIT RECEIPT"
	case enum.TransactionTypeWithdrawal:
		receipt.Title = "WITHDRAWAL RECEIPT"
	}

	return receipt, nil
}

// PrintReceipt builds the receipt for a posting and prints it. The receipt
// is returned even when printing fails.
func (s *PrinterService) PrintReceipt(ctx context.Context, transactionID uuid.UUID) (*entity.Receipt, error) {
	return s.print(ctx, transactionID, s.BuildReceipt)
}

// PrintWholesaleReceipt is PrintReceipt for wholesale postings.
func (s *PrinterService) PrintWholesaleReceipt(ctx context.Context, transactionID uuid.UUID) (*entity.Receipt, error) {
	return s.print(ctx, transactionID, s.BuildWholesaleReceipt)
}

func (s *PrinterService) print(ctx context.Context, transactionID uuid.UUID, build func(context.Context, uuid.UUID) (*entity.Receipt, error)) (*entity.Receipt, error) {
	receipt, err := build(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if err := s.printer.Print(FormatReceipt(receipt, s.width)); err != nil {
		log.Printf("Printer error (transaction %s): %v", transactionID, err)
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}
	return receipt, nil
}

// TestPrint sends a sample receipt to the printer.
func (s *PrinterService) TestPrint() (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header:      s.header,
		Title:       "PRINTER TEST",
		ReferenceNo: "TEST-001",
		Date:        time.Now().Format("2006-01-02 15:04"),
		Customer:    "Test Customer",
		Items: []entity.ReceiptItem{
			{Name: "Layer feed 50kg", Quantity: 1, UnitPrice: decimal.NewFromInt(10), Total: decimal.NewFromInt(10)},
		},
		Amount:   decimal.NewFromInt(10),
		Currency: s.currency,
	}

	if err := s.printer.Print(FormatReceipt(receipt, s.width)); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}
	return receipt, nil
}

// FormatReceipt converts a Receipt into ESC/POS bytes for a printer that is
// width columns wide.
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)
	money := func(v decimal.Decimal) string { return r.Currency + " " + v.StringFixed(2) }

	doc.Align(printer.AlignCenter).
		Bold(true).
		Size(printer.SizeDouble).
		Line(r.Header.StoreName).
		Size(printer.SizeNormal).
		Bold(false)
	if r.Header.Address != "" {
		doc.Line(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Linef("Phone: %s", r.Header.Phone)
	}
	doc.Feed(1).Bold(true).Line(r.Title).Bold(false)

	doc.Align(printer.AlignLeft).Rule('-')
	doc.Pair("Ref:", r.ReferenceNo).
		Pair("Date:", r.Date)
	if r.Customer != "" {
		doc.Pair("Customer:", r.Customer)
	}
	if r.CustomerPhone != "" {
		doc.Pair("Phone:", r.CustomerPhone)
	}
	if r.PaymentMethod != "" {
		doc.Pair("Payment:", r.PaymentMethod)
	}
	if r.BuyBack != nil && r.BuyBack.ReferenceName != "" {
		doc.Pair("Reference:", r.BuyBack.ReferenceName)
	}
	doc.Rule('-')

	for _, item := range r.Items {
		doc.Pair(fmt.Sprintf("%dx %s", item.Quantity, item.Name), item.Total.StringFixed(2))
		switch {
		case item.Weight != nil && item.PricePerKg != nil:
			doc.Linef("  %s kg @ %s/kg", item.Weight.String(), item.PricePerKg.StringFixed(2))
		case item.Weight != nil:
			doc.Linef("  %s kg", item.Weight.String())
		case item.Quantity > 1:
			doc.Linef("  @ %s each", item.UnitPrice.StringFixed(2))
		}
	}
	if r.BuyBack != nil {
		doc.Pair("Chickens:", fmt.Sprintf("%d", r.BuyBack.Quantity)).
			Pair("Total weight:", r.BuyBack.Weight.StringFixed(2)+" kg").
			Pair("Price per kg:", money(r.BuyBack.PricePerKg))
	}
	if len(r.Items) > 0 || r.BuyBack != nil {
		doc.Rule('-')
	}

	doc.Bold(true).
		Pair(amountLabel(r), money(r.Amount)).
		Bold(false)
	if !r.BalanceBefore.IsZero() || !r.BalanceAfter.IsZero() {
		doc.Pair("Previous balance:", money(r.BalanceBefore)).
			Pair("New balance:", money(r.BalanceAfter))
	}
	if r.Notes != "" && len(r.Items) == 0 && r.BuyBack == nil {
		doc.Line(r.Notes)
	}
	doc.Rule('-')

	doc.Feed(2).
		Align(printer.AlignRight).
		Line(strings.Repeat("_", min(25, width))).
		Line("Authorized Signature").
		Align(printer.AlignCenter).
		Feed(1).
		Line("Thank you for your business!").
		Align(printer.AlignLeft).
		Cut()

	return doc.Bytes()
}

func amountLabel(r *entity.Receipt) string {
	switch {
	case len(r.Items) > 0:
		return "TOTAL:"
	case r.BuyBack != nil:
		return "TOTAL PAID:"
	default:
		return "AMOUNT:"
	}
}

// referenceFor returns the printed reference of a posting: the invoice
// number for sales, otherwise a type prefix and the posting sequence.
func referenceFor(t *entity.Transaction) string {
	if t.Sale != nil && t.Sale.InvoiceNo != "" {
		return t.Sale.InvoiceNo
	}
	prefix := map[enum.TransactionType]string{
		enum.TransactionTypeDeposit:    "DP",
		enum.TransactionTypeWithdrawal: "WD",
		enum.TransactionTypeBuyBack:    "BB",
		enum.TransactionTypeSale:       "SL",
	}[t.Type]
	return fmt.Sprintf("%s-%s-%d", prefix, strings.ToUpper(t.CustomerID.String()[:4]), t.Sequence)
}
