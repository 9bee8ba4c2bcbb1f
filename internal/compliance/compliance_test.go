package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tordrt/sqlaudit/internal/diagnostic"
	"github.com/tordrt/sqlaudit/internal/schema"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []diagnostic.ComplianceWarning
	}{
		{
			name: "empty statement",
			sql:  "",
			want: []diagnostic.ComplianceWarning{},
		},
		{
			name: "one warning per sensitive field",
			sql:  "SELECT email, password FROM users",
			want: []diagnostic.ComplianceWarning{
				"Query may access sensitive data: EMAIL",
				"Query may access sensitive data: PASSWORD",
				largeResultSetWarning,
			},
		},
		{
			name: "bounded select without sensitive fields",
			sql:  "select id from users limit 5",
			want: []diagnostic.ComplianceWarning{},
		},
		{
			name: "update is a modification",
			sql:  "UPDATE accounts SET balance = 0",
			want: []diagnostic.ComplianceWarning{modificationWarning},
		},
		{
			name: "delete with sensitive field",
			sql:  "DELETE FROM customers WHERE ssn = '123'",
			want: []diagnostic.ComplianceWarning{
				"Query may access sensitive data: SSN",
				modificationWarning,
			},
		},
		{
			name: "field names match as substrings",
			sql:  "SELECT phone_number, credit_card_last4 FROM wallets LIMIT 1",
			want: []diagnostic.ComplianceWarning{
				"Query may access sensitive data: PHONE",
				"Query may access sensitive data: CREDIT_CARD",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Scan(tt.sql))
		})
	}
}

func TestNewScannerExtraFields(t *testing.T) {
	s := NewScanner("iban", " EMAIL ", "", "Iban")

	assert.Equal(t, append(append([]string{}, DefaultFields...), "IBAN"), s.Fields)
	assert.Contains(t, s.Scan("SELECT iban FROM accounts LIMIT 1"),
		diagnostic.ComplianceWarning("Query may access sensitive data: IBAN"))
}

func TestSensitiveColumns(t *testing.T) {
	sc := &schema.Schema{Tables: []schema.Table{
		{Name: "users", Columns: []schema.Column{
			{Name: "id"},
			{Name: "email"},
			{Name: "password_hash"},
		}},
		{Name: "orders", Columns: []schema.Column{{Name: "total"}}},
	}}

	assert.Equal(t, []string{"users.email", "users.password_hash"}, NewScanner().SensitiveColumns(sc))
	assert.Nil(t, NewScanner().SensitiveColumns(schema.Empty()))
}
