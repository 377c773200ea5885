package util

import (
	"encoding/json"
	"strings"
	"testing"

	"finance-tracker/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	for _, email := range []string{"alice@x.com", "a.b+c@example.co.uk"} {
		assert.True(t, ValidateEmail(email), email)
	}
	for _, email := range []string{"", "alice", "alice@", "@x.com", "alice@x", "alice x@x.com"} {
		assert.False(t, ValidateEmail(email), email)
	}
}

func TestValidateUsername(t *testing.T) {
	assert.False(t, ValidateUsername("ab"))
	assert.True(t, ValidateUsername("abc"))
	assert.True(t, ValidateUsername(strings.Repeat("a", 50)))
	assert.False(t, ValidateUsername(strings.Repeat("a", 51)))
}

func TestValidatePassword(t *testing.T) {
	assert.False(t, ValidatePassword("short"))
	assert.True(t, ValidatePassword("password123"))
	assert.True(t, ValidatePassword(strings.Repeat("p", 72)))
	assert.False(t, ValidatePassword(strings.Repeat("p", 73)))
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("0.01")))
	assert.NoError(t, ValidateAmount(decimal.NewFromInt(50)))
	assert.Error(t, ValidateAmount(decimal.Zero))
	assert.Error(t, ValidateAmount(decimal.NewFromInt(-5)))
}

func TestValidateTransactionCreate(t *testing.T) {
	valid := models.TransactionCreate{Amount: decimal.NewFromInt(50), Type: models.TransactionExpense}
	assert.NoError(t, ValidateTransactionCreate(valid))

	zero := valid
	zero.Amount = decimal.Zero
	assert.Error(t, ValidateTransactionCreate(zero))

	badType := valid
	badType.Type = "transfer"
	assert.Error(t, ValidateTransactionCreate(badType))

	long := strings.Repeat("x", MaxDescriptionLength+1)
	tooLong := valid
	tooLong.Description = &long
	assert.Error(t, ValidateTransactionCreate(tooLong))
}

func TestValidateTransactionUpdate(t *testing.T) {
	cases := []struct {
		body    string
		wantErr bool
	}{
		{`{}`, false},
		{`{"description": "rent"}`, false},
		{`{"description": null, "category_id": null}`, false},
		{`{"amount": 10}`, false},
		{`{"amount": 0}`, true},
		{`{"amount": -1}`, true},
		{`{"amount": null}`, true},
		{`{"type": "income"}`, false},
		{`{"type": "gift"}`, true},
		{`{"type": null}`, true},
		{`{"transaction_date": null}`, true},
		{`{"transaction_date": "2024-01-01"}`, false},
	}
	for _, tc := range cases {
		var req models.TransactionUpdate
		require.NoError(t, json.Unmarshal([]byte(tc.body), &req), tc.body)
		err := ValidateTransactionUpdate(req)
		if tc.wantErr {
			assert.Error(t, err, tc.body)
		} else {
			assert.NoError(t, err, tc.body)
		}
	}
}

func TestValidateCategory(t *testing.T) {
	assert.NoError(t, ValidateCategoryCreate(models.CategoryCreate{Name: "Food"}))
	assert.Error(t, ValidateCategoryCreate(models.CategoryCreate{Name: "ab"}))
	assert.Error(t, ValidateCategoryCreate(models.CategoryCreate{Name: strings.Repeat("n", 51)}))

	assert.NoError(t, ValidateCategoryUpdate(models.CategoryUpdate{Name: models.Some("F")}))
	assert.Error(t, ValidateCategoryUpdate(models.CategoryUpdate{Name: models.Some("")}))
	assert.Error(t, ValidateCategoryUpdate(models.CategoryUpdate{Name: models.Null[string]()}))
	assert.NoError(t, ValidateCategoryUpdate(models.CategoryUpdate{Description: models.Null[string]()}))
}
