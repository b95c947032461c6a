package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Pre-built schema names.
const (
	SchemaLogin        = "login"
	SchemaRegistration = "registration"
	SchemaPayment      = "payment"
	SchemaBankAccount  = "bank_account"
	SchemaCreditCard   = "credit_card"
	SchemaAddress      = "address"
)

var (
	expiryDatePattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	zipCodePattern    = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// LoginSchema validates email and password.
func LoginSchema() *Schema {
	return MustSchema(SchemaLogin,
		NewField("email", Rule{Kind: KindEmail, Required: true, Trim: true, Lowercase: true}),
		NewField("password", Rule{Kind: KindPassword, Required: true}),
	)
}

// RegistrationSchema validates a new user profile.
func RegistrationSchema() *Schema {
	return MustSchema(SchemaRegistration,
		NewField("firstName", Rule{Kind: KindName, Required: true, Trim: true, Sanitize: true}),
		NewField("lastName", Rule{Kind: KindName, Required: true, Trim: true, Sanitize: true}),
		NewField("email", Rule{Kind: KindEmail, Required: true, Trim: true, Lowercase: true}),
		NewField("phone", Rule{Kind: KindPhone, Required: true, Trim: true}),
		NewField("password", Rule{Kind: KindPassword, Required: true}),
		NewField("pin", Rule{Kind: KindPin, Required: true, Trim: true}),
	)
}

// PaymentSchema validates a peer payment.
func PaymentSchema() *Schema {
	return MustSchema(SchemaPayment,
		NewField("amount", Rule{
			Kind:     KindAmount,
			Required: true,
			Min:      Float(0.01),
			Max:      Float(1_000_000),
		}),
		NewField("recipient", Rule{
			Kind:     KindRequired,
			Required: true,
			Trim:     true,
			Sanitize: true,
			Max:      Float(100),
		}),
		NewField("description", Rule{
			Kind:     KindRequired,
			Trim:     true,
			Sanitize: true,
			Max:      Float(200),
		}),
	)
}

// BankAccountSchema validates a linked bank account.
func BankAccountSchema() *Schema {
	return MustSchema(SchemaBankAccount,
		NewField("accountHolder", Rule{Kind: KindName, Required: true, Trim: true}),
		NewField("accountNumber", Rule{Kind: KindAccountNumber, Required: true, Trim: true}),
		NewField("routingNumber", Rule{Kind: KindRoutingNumber, Required: true, Trim: true}),
	)
}

// CreditCardSchema validates a card. The CVV is validated but never retained.
func CreditCardSchema() *Schema {
	return CreditCardSchemaAt(time.Now)
}

// CreditCardSchemaAt is CreditCardSchema with the clock used for the expiry check.
func CreditCardSchemaAt(now func() time.Time) *Schema {
	return MustSchema(SchemaCreditCard,
		NewField("cardNumber", Rule{Kind: KindCardNumber, Required: true}),
		NewField("cardholderName", Rule{Kind: KindName, Required: true, Trim: true, Uppercase: true}),
		NewField("expiryDate",
			Rule{
				Kind:     KindRequired,
				Required: true,
				Trim:     true,
				Pattern:  expiryDatePattern,
				Message:  "Expiry date must be in MM/YY format",
			},
			Rule{
				Kind:    KindCustom,
				Custom:  ExpiryNotPassed(now),
				Message: "Card has expired",
			},
		),
		NewField("cvv", Rule{Kind: KindCvv, Required: true, Trim: true}),
	)
}

// AddressSchema validates a postal address.
func AddressSchema() *Schema {
	return MustSchema(SchemaAddress,
		NewField("street", Rule{Kind: KindAddress, Required: true, Trim: true, Sanitize: true}),
		NewField("city", Rule{Kind: KindName, Required: true, Trim: true}),
		NewField("state", Rule{
			Kind:      KindRequired,
			Required:  true,
			Trim:      true,
			Uppercase: true,
			MinLength: Int(2),
			MaxLength: Int(2),
		}),
		NewField("zipCode", Rule{Kind: KindRequired, Required: true, Trim: true, Pattern: zipCodePattern}),
		NewField("country", Rule{Kind: KindRequired, Required: true, Trim: true, Uppercase: true}),
	)
}

// SchemaByName returns a pre-built schema.
func SchemaByName(name string) (*Schema, error) {
	switch name {
	case SchemaLogin:
		return LoginSchema(), nil
	case SchemaRegistration:
		return RegistrationSchema(), nil
	case SchemaPayment:
		return PaymentSchema(), nil
	case SchemaBankAccount:
		return BankAccountSchema(), nil
	case SchemaCreditCard:
		return CreditCardSchema(), nil
	case SchemaAddress:
		return AddressSchema(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, name)
	}
}

// SchemaNames lists the pre-built schemas.
func SchemaNames() []string {
	return []string{
		SchemaLogin,
		SchemaRegistration,
		SchemaPayment,
		SchemaBankAccount,
		SchemaCreditCard,
		SchemaAddress,
	}
}

// ExpiryNotPassed returns a predicate accepting MM/YY values whose month has not ended
// at now(). Malformed values pass so the pattern rule reports them.
func ExpiryNotPassed(now func() time.Time) CustomPredicate {
	return func(value any) CustomResult {
		s, ok := value.(string)
		if !ok || !expiryDatePattern.MatchString(s) {
			return Valid()
		}

		month, _ := strconv.Atoi(s[:2])
		year, _ := strconv.Atoi(s[3:])

		// First day of the month after expiry.
		limit := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
		if !now().UTC().Before(limit) {
			return Invalid("")
		}
		return Valid()
	}
}
