package sequence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ierr "github.com/yadgarautos/jobfiles/internal/errors"
)

const (
	// DefaultPrefix is printed on every invoice number, YAI-0042
	DefaultPrefix = "YAI"
	// DefaultCounterName is the counter shared by every client
	DefaultCounterName = "jobFiles"

	padWidth = 4
)

// InvoiceNumber is a formatted position of the counter
type InvoiceNumber struct {
	Prefix   string
	Sequence int64
}

func NewInvoiceNumber(prefix string, seq int64) InvoiceNumber {
	return InvoiceNumber{Prefix: prefix, Sequence: seq}
}

// String pads to four digits. Larger values keep their natural width.
func (n InvoiceNumber) String() string {
	return fmt.Sprintf("%s-%0*d", n.Prefix, padWidth, n.Sequence)
}

// ParseInvoiceNumber reads back a rendered number such as YAI-0042
func ParseInvoiceNumber(s string) (InvoiceNumber, error) {
	idx := strings.LastIndex(s, "-")
	if idx <= 0 || idx == len(s)-1 {
		return InvoiceNumber{}, ierr.NewErrorf("malformed invoice number %q", s).
			WithHint("Invoice numbers look like YAI-0042").
			Mark(ierr.ErrValidation)
	}

	seq, err := strconv.ParseInt(s[idx+1:], 10, 64)
	if err != nil || seq < 0 {
		return InvoiceNumber{}, ierr.NewErrorf("malformed invoice sequence %q", s).
			WithHint("Invoice numbers look like YAI-0042").
			Mark(ierr.ErrValidation)
	}

	return InvoiceNumber{Prefix: s[:idx], Sequence: seq}, nil
}

// Counter is the persisted record; Current is the last issued sequence
type Counter struct {
	Name      string    `db:"name" json:"name" dynamodbav:"name"`
	Current   int64     `db:"current" json:"current" dynamodbav:"current"`
	CreatedAt time.Time `db:"created_at" json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at" dynamodbav:"updated_at"`
}
