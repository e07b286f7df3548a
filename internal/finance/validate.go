package finance

import (
	"sort"
	"strings"

	"budget-tracker/internal/models"
)

// MinPasswordLength is the shortest password the registration form accepts.
const MinPasswordLength = 6

// FieldErrors maps form fields to the message shown next to them.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return strings.Join(parts, "; ")
}

func (fe FieldErrors) orNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// ValidateRegistration checks the registration form.
func ValidateRegistration(in models.RegisterInput, confirmPassword string) error {
	errs := FieldErrors{}

	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "Name is required"
	}

	if strings.TrimSpace(in.Email) == "" {
		errs["email"] = "Email is required"
	} else if !IsValidEmail(in.Email) {
		errs["email"] = "Please enter a valid email"
	}

	if in.Password == "" {
		errs["password"] = "Password is required"
	} else if len(in.Password) < MinPasswordLength {
		errs["password"] = "Password must be at least 6 characters"
	}

	if confirmPassword == "" {
		errs["confirmPassword"] = "Please confirm your password"
	} else if in.Password != confirmPassword {
		errs["confirmPassword"] = "Passwords do not match"
	}

	return errs.orNil()
}

// ValidateExpenseInput checks the expense form.
func ValidateExpenseInput(in models.ExpenseInput) error {
	errs := FieldErrors{}

	if strings.TrimSpace(in.Title) == "" {
		errs["title"] = "Title is required"
	}
	if in.Amount <= 0 {
		errs["amount"] = "Amount must be greater than 0"
	}
	if in.Category == "" {
		errs["category"] = "Category is required"
	} else if !models.IsValidCategory(in.Category) {
		errs["category"] = "Unknown category"
	}

	return errs.orNil()
}

// ValidateCommitteeInput checks the committee creation form.
func ValidateCommitteeInput(in models.CommitteeInput) error {
	errs := FieldErrors{}

	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "Committee name is required"
	}
	if strings.TrimSpace(in.Description) == "" {
		errs["description"] = "Description is required"
	}
	if in.GoalAmount <= 0 {
		errs["goalAmount"] = "Goal amount must be greater than 0"
	}
	if !in.Type.Valid() {
		errs["type"] = "Type must be weekly, monthly or yearly"
	}

	return errs.orNil()
}

// ValidateMessage checks a chat message before it is sent.
func ValidateMessage(text string) error {
	errs := FieldErrors{}

	if strings.TrimSpace(text) == "" {
		errs["message"] = "Message cannot be empty"
	} else if ContainsOffensiveWords(text) {
		errs["message"] = "Your message contains offensive content. Please be respectful."
	}

	return errs.orNil()
}
