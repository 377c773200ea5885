package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

type Transaction struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	Amount          decimal.Decimal `json:"amount"`
	Type            TransactionType `json:"type"`
	TransactionDate time.Time       `json:"transaction_date"`
	Description     *string         `json:"description"`
	CategoryID      *int64          `json:"category_id"`
	Category        *Category       `json:"category"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type TransactionCreate struct {
	Amount          decimal.Decimal `json:"amount"`
	Type            TransactionType `json:"type"`
	Description     *string         `json:"description"`
	CategoryID      *int64          `json:"category_id"`
	TransactionDate *Timestamp      `json:"transaction_date"`
}

// TransactionUpdate holds the fields of a partial transaction update.
type TransactionUpdate struct {
	Amount          Optional[decimal.Decimal] `json:"amount"`
	Type            Optional[TransactionType] `json:"type"`
	TransactionDate Optional[Timestamp]       `json:"transaction_date"`
	Description     Optional[string]          `json:"description"`
	CategoryID      Optional[int64]           `json:"category_id"`
}

// Apply copies every set field onto t. Callers validate the patch first.
func (u TransactionUpdate) Apply(t *Transaction) {
	if u.Amount.Set {
		t.Amount = u.Amount.Value
	}
	if u.Type.Set {
		t.Type = u.Type.Value
	}
	if u.TransactionDate.Set {
		t.TransactionDate = u.TransactionDate.Value.Time
	}
	if u.Description.Set {
		t.Description = u.Description.Ptr()
	}
	if u.CategoryID.Set {
		t.CategoryID = u.CategoryID.Ptr()
		if t.Category != nil && (t.CategoryID == nil || *t.CategoryID != t.Category.ID) {
			t.Category = nil
		}
	}
}

// TransactionFilter narrows a transaction listing. Nil fields are ignored.
type TransactionFilter struct {
	Skip       int
	Limit      int
	StartDate  *time.Time
	EndDate    *time.Time
	Type       *TransactionType
	CategoryID *int64
}
