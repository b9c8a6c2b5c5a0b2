package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := errors.New("connection reset")

	tests := map[string]struct {
		err  error
		want Kind
	}{
		"validation":     {err: Validation("op", "bad"), want: KindValidation},
		"wrapped":        {err: fmt.Errorf("outer: %w", NotFound("op", "missing")), want: KindNotFound},
		"payment":        {err: Payment("op", ReasonDeclined, base), want: KindPayment},
		"persistence":    {err: Persistence("op", base), want: KindPersistence},
		"untagged error": {err: base, want: KindInternal},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
			assert.True(t, Is(tt.err, tt.want))
		})
	}
}

func TestIsNil(t *testing.T) {
	assert.False(t, Is(nil, KindInternal))
}

func TestPaymentError(t *testing.T) {
	base := errors.New("card_declined")
	err := fmt.Errorf("checkout: %w", Payment("HandleOrder", ReasonDeclined, base))

	assert.Equal(t, ReasonDeclined, ReasonOf(err))
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "HandleOrder: payment failed (declined): card_declined")
	assert.Equal(t, PaymentReason(""), ReasonOf(base))
}
