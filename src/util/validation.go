package util

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"finance-tracker/src/models"

	"github.com/shopspring/decimal"
)

const (
	MaxDescriptionLength = 500
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidateUsername(username string) bool {
	n := utf8.RuneCountInString(username)
	return n >= 3 && n <= 50
}

func ValidatePassword(password string) bool {
	return utf8.RuneCountInString(password) >= 8 && len(password) <= maxPasswordBytes
}

func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be greater than 0")
	}
	return nil
}

func ValidateTransactionType(t models.TransactionType) error {
	if !t.Valid() {
		return fmt.Errorf("type must be one of: income, expense")
	}
	return nil
}

func ValidateDescription(description *string) error {
	if description != nil && utf8.RuneCountInString(*description) > MaxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", MaxDescriptionLength)
	}
	return nil
}

// ValidateCategoryName checks a name against the given rune bounds.
func ValidateCategoryName(name string, min, max int) error {
	n := utf8.RuneCountInString(name)
	if n < min || n > max {
		return fmt.Errorf("name must be between %d and %d characters", min, max)
	}
	return nil
}

func ValidateTransactionCreate(req models.TransactionCreate) error {
	if err := ValidateAmount(req.Amount); err != nil {
		return err
	}
	if err := ValidateTransactionType(req.Type); err != nil {
		return err
	}
	return ValidateDescription(req.Description)
}

// ValidateTransactionUpdate checks only the fields present in the patch.
// Null is accepted for description and category_id, which are nullable.
func ValidateTransactionUpdate(req models.TransactionUpdate) error {
	if req.Amount.Set {
		if req.Amount.Null {
			return fmt.Errorf("amount cannot be null")
		}
		if err := ValidateAmount(req.Amount.Value); err != nil {
			return err
		}
	}
	if req.Type.Set {
		if req.Type.Null {
			return fmt.Errorf("type cannot be null")
		}
		if err := ValidateTransactionType(req.Type.Value); err != nil {
			return err
		}
	}
	if req.TransactionDate.Set && req.TransactionDate.Null {
		return fmt.Errorf("transaction_date cannot be null")
	}
	if req.Description.Set && !req.Description.Null {
		return ValidateDescription(&req.Description.Value)
	}
	return nil
}

func ValidateCategoryCreate(req models.CategoryCreate) error {
	if err := ValidateCategoryName(req.Name, 3, 50); err != nil {
		return err
	}
	return ValidateDescription(req.Description)
}

func ValidateCategoryUpdate(req models.CategoryUpdate) error {
	if req.Name.Set {
		if req.Name.Null {
			return fmt.Errorf("name cannot be null")
		}
		if err := ValidateCategoryName(req.Name.Value, 1, 100); err != nil {
			return err
		}
	}
	if req.Description.Set && !req.Description.Null {
		return ValidateDescription(&req.Description.Value)
	}
	return nil
}
