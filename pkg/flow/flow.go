// Package flow implements the shared transaction form lifecycle behind the
// deposit, withdraw, swap and transfer panels. A Flow owns a draft (chosen
// currencies, amount text, error state) and glues the sanitizer, validator
// and swap converter together; committing a draft mutates the ledger,
// records history and kicks off a background sync.
package flow

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"blinkwallet/pkg/models"
	"blinkwallet/pkg/overlay"
	"blinkwallet/pkg/registry"
	"blinkwallet/pkg/sanitize"
	"blinkwallet/pkg/swap"
	"blinkwallet/pkg/validate"
)

// Kind identifies a transaction flow.
type Kind string

const (
	KindDeposit  Kind = "deposit"
	KindWithdraw Kind = "withdraw"
	KindSwap     Kind = "swap"
	KindTransfer Kind = "transfer"
)

// Field identifies which amount field the user last edited. Only swap has
// two fields; the other flows always edit the source field.
type Field int

const (
	FieldFrom Field = iota
	FieldTo
)

// Ledger is the balance state a flow mutates on confirm.
type Ledger interface {
	Balance(code string) float64
	ApplyDeposit(code string, amount float64)
	ApplyWithdraw(code string, amount float64)
	ApplySwap(from string, amount float64, to string, received float64)
	AddHistory(text string) models.HistoryEntry
}

// Syncer pushes confirmed mutations to the backend without blocking.
type Syncer interface {
	SyncBalances()
	Transfer(toTag, symbol string, amount float64)
}

// Receipt describes a committed transaction.
type Receipt struct {
	Kind    Kind
	Summary string
	Entry   models.HistoryEntry
}

const msgNoAssets = "Insufficient balance"

// Flow is a single transaction form. Not safe for concurrent use; the UI
// loop owns it, one panel at a time.
type Flow struct {
	kind   Kind
	reg    *registry.Registry
	ledger Ledger
	nav    *overlay.Controller
	sync   Syncer

	choices   []string
	toChoices []string

	currency     string
	toCurrency   string
	amountText   string
	toAmountText string
	activeField  Field
	tag          string

	errMsg     string
	canConfirm bool
	disabled   bool
}

// New builds a flow of the given kind. sync may be nil for offline use.
func New(kind Kind, reg *registry.Registry, ledger Ledger, nav *overlay.Controller, sync Syncer) *Flow {
	return &Flow{kind: kind, reg: reg, ledger: ledger, nav: nav, sync: sync}
}

func (f *Flow) Kind() Kind           { return f.kind }
func (f *Flow) Choices() []string    { return f.choices }
func (f *Flow) ToChoices() []string  { return f.toChoices }
func (f *Flow) Currency() string     { return f.currency }
func (f *Flow) ToCurrency() string   { return f.toCurrency }
func (f *Flow) AmountText() string   { return f.amountText }
func (f *Flow) ToAmountText() string { return f.toAmountText }
func (f *Flow) ActiveField() Field   { return f.activeField }
func (f *Flow) Tag() string          { return f.tag }
func (f *Flow) ErrMsg() string       { return f.errMsg }
func (f *Flow) CanConfirm() bool     { return f.canConfirm }
func (f *Flow) Disabled() bool       { return f.disabled }

// Panel returns the overlay panel this flow renders into.
func (f *Flow) Panel() overlay.Panel {
	switch f.kind {
	case KindDeposit:
		return overlay.PanelDeposit
	case KindWithdraw:
		return overlay.PanelWithdraw
	case KindSwap:
		return overlay.PanelSwap
	default:
		return overlay.PanelTransfer
	}
}

func (f *Flow) spendsBalance() bool {
	return f.kind != KindDeposit
}

// Open resets the draft, populates the currency choices and shows the
// flow's panel. Spending flows with no positive balances land in a
// disabled state with confirm unavailable.
func (f *Flow) Open() {
	f.currency = ""
	f.toCurrency = ""
	f.amountText = ""
	f.toAmountText = ""
	f.activeField = FieldFrom
	f.tag = ""
	f.errMsg = ""
	f.canConfirm = false
	f.disabled = false

	if f.spendsBalance() {
		f.choices = f.reg.AvailableBalances()
	} else {
		f.choices = f.reg.Rated()
	}

	if len(f.choices) == 0 {
		f.disabled = true
		f.errMsg = msgNoAssets
	} else {
		f.currency = f.choices[0]
	}

	if f.kind == KindSwap {
		f.rebuildToChoices()
	}

	f.nav.Open(f.Panel())
	if f.spendsBalance() {
		f.nav.ShowPreview()
	}
}

func (f *Flow) rebuildToChoices() {
	rated := f.reg.Rated()
	f.toChoices = f.toChoices[:0]
	for _, code := range rated {
		if code != f.currency {
			f.toChoices = append(f.toChoices, code)
		}
	}
	if f.toCurrency == "" || f.toCurrency == f.currency {
		f.toCurrency = ""
		if len(f.toChoices) > 0 {
			f.toCurrency = f.toChoices[0]
		}
	}
}

// SetAmount ingests a keystroke in the source amount field. The returned
// text and caret are what the input widget should display.
func (f *Flow) SetAmount(text string, caret int) (string, int) {
	if f.disabled {
		return "", 0
	}
	f.activeField = FieldFrom

	maxDec := sanitize.NoLimit
	if d, ok := f.reg.DecimalsOf(f.currency); ok {
		maxDec = d
	}
	clean, pos := sanitize.Sanitize(text, caret, maxDec)
	f.amountText = clean

	if f.kind == KindSwap {
		f.recalcTo()
	}
	f.revalidate()
	return clean, pos
}

// SetToAmount ingests a keystroke in the swap destination field. The source
// amount is re-derived by inverse conversion and re-validated against the
// source currency's limits.
func (f *Flow) SetToAmount(text string, caret int) (string, int) {
	if f.disabled || f.kind != KindSwap {
		return f.toAmountText, caret
	}
	f.activeField = FieldTo

	maxDec := sanitize.NoLimit
	if d, ok := f.reg.DecimalsOf(f.toCurrency); ok {
		maxDec = d
	}
	clean, pos := sanitize.Sanitize(text, caret, maxDec)
	f.toAmountText = clean

	f.recalcFrom()
	f.revalidate()
	return clean, pos
}

func (f *Flow) recalcTo() {
	amt, err := strconv.ParseFloat(f.amountText, 64)
	if err != nil || amt <= 0 {
		f.toAmountText = ""
		return
	}
	out, err := swap.Convert(amt, f.currency, f.toCurrency, f.reg.Rates())
	if err != nil {
		f.toAmountText = ""
		return
	}
	dec := 8
	if d, ok := f.reg.DecimalsOf(f.toCurrency); ok {
		dec = d
	}
	f.toAmountText = swap.Display(out, dec)
}

func (f *Flow) recalcFrom() {
	amt, err := strconv.ParseFloat(f.toAmountText, 64)
	if err != nil || amt <= 0 {
		f.amountText = ""
		return
	}
	out, err := swap.Inverse(amt, f.currency, f.toCurrency, f.reg.Rates())
	if err != nil {
		f.amountText = ""
		return
	}
	dec := 8
	if d, ok := f.reg.DecimalsOf(f.currency); ok {
		dec = d
	}
	f.amountText = swap.Display(out, dec)
}

func (f *Flow) revalidate() {
	f.errMsg = ""
	f.canConfirm = false
	if f.amountText == "" {
		return
	}

	ctx := validate.Context{}
	if f.spendsBalance() {
		ctx = validate.Context{Balance: f.ledger.Balance(f.currency), LimitToBalance: true}
	}
	_, err := validate.Amount(f.amountText, f.currency, f.reg, ctx)
	if err != nil {
		f.errMsg = err.Error()
		return
	}

	if f.kind == KindSwap && f.toAmountText == "" {
		f.errMsg = "Invalid amount"
		return
	}
	if f.kind == KindTransfer && strings.TrimSpace(f.tag) == "" {
		return
	}
	f.canConfirm = true
}

// SelectCurrency changes the source currency. Any typed amount is invalid
// relative to the new currency's limits, so the draft resets.
func (f *Flow) SelectCurrency(code string) {
	if f.disabled || code == f.currency {
		return
	}
	f.currency = code
	f.amountText = ""
	f.toAmountText = ""
	f.errMsg = ""
	f.canConfirm = false
	if f.kind == KindSwap {
		f.rebuildToChoices()
	}
}

// SelectToCurrency changes the swap destination currency.
func (f *Flow) SelectToCurrency(code string) {
	if f.disabled || f.kind != KindSwap || code == f.toCurrency || code == f.currency {
		return
	}
	f.toCurrency = code
	f.amountText = ""
	f.toAmountText = ""
	f.errMsg = ""
	f.canConfirm = false
}

// SetTag records the recipient tag for a transfer draft.
func (f *Flow) SetTag(tag string) {
	if f.kind != KindTransfer {
		return
	}
	f.tag = strings.TrimPrefix(strings.TrimSpace(tag), "@")
	f.revalidate()
}

// UseMax fills the amount field with the largest permitted amount: the
// current balance, capped by the per-transaction maximum.
func (f *Flow) UseMax() {
	if f.disabled || !f.spendsBalance() {
		return
	}
	amount := f.ledger.Balance(f.currency)
	if max, ok := f.reg.MaxOf(f.currency); ok {
		amount = math.Min(amount, max)
	}
	dec := 8
	if d, ok := f.reg.DecimalsOf(f.currency); ok {
		dec = d
	}
	text := swap.Display(amount, dec)
	f.SetAmount(text, len(text))
}

// Confirm re-validates the draft and commits it: the ledger mutation and
// history entry happen synchronously, the backend sync is fire-and-forget,
// and the overlay moves to the success panel. Validation failure returns
// the error without touching the ledger.
func (f *Flow) Confirm() (*Receipt, error) {
	if f.disabled {
		return nil, &validate.Error{Reason: validate.ReasonInsufficientBalance, Message: msgNoAssets}
	}

	ctx := validate.Context{}
	if f.spendsBalance() {
		ctx = validate.Context{Balance: f.ledger.Balance(f.currency), LimitToBalance: true}
	}
	amount, err := validate.Amount(f.amountText, f.currency, f.reg, ctx)
	if err != nil {
		f.errMsg = err.Error()
		f.canConfirm = false
		return nil, err
	}

	var summary string
	switch f.kind {
	case KindDeposit:
		f.ledger.ApplyDeposit(f.currency, amount)
		summary = fmt.Sprintf("Deposit %s %s", f.amountText, f.currency)
	case KindWithdraw:
		f.ledger.ApplyWithdraw(f.currency, amount)
		summary = fmt.Sprintf("Withdraw %s %s", f.amountText, f.currency)
	case KindSwap:
		received, perr := strconv.ParseFloat(f.toAmountText, 64)
		if perr != nil || received <= 0 {
			err := &validate.Error{Reason: validate.ReasonInvalidAmount, Message: "Invalid amount"}
			f.errMsg = err.Message
			f.canConfirm = false
			return nil, err
		}
		f.ledger.ApplySwap(f.currency, amount, f.toCurrency, received)
		summary = fmt.Sprintf("Swap %s %s to %s %s", f.amountText, f.currency, f.toAmountText, f.toCurrency)
	case KindTransfer:
		if f.tag == "" {
			err := &validate.Error{Reason: validate.ReasonInvalidAmount, Message: "Recipient tag required"}
			f.errMsg = err.Message
			f.canConfirm = false
			return nil, err
		}
		f.ledger.ApplyWithdraw(f.currency, amount)
		summary = fmt.Sprintf("Transfer %s %s to @%s", f.amountText, f.currency, f.tag)
	}

	entry := f.ledger.AddHistory(summary)

	if f.sync != nil {
		if f.kind == KindTransfer {
			f.sync.Transfer(f.tag, f.currency, amount)
		}
		f.sync.SyncBalances()
	}

	f.nav.Open(overlay.PanelSuccess, overlay.WithoutBack())
	return &Receipt{Kind: f.kind, Summary: summary, Entry: entry}, nil
}
