package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartClone_DoesNotShareLines(t *testing.T) {
	cart := NewCart("user:1", time.Now())
	cart.Lines = append(cart.Lines, CartLine{ID: "ln-1", ItemID: "margherita", Quantity: 1, SelectedOptionIDs: []string{"size-large"}})
	cart.DeliveryAddress = &Address{Line1: "1 Main St", City: "Springfield"}

	clone := cart.Clone()
	clone.Lines[0].Quantity = 5
	clone.Lines[0].SelectedOptionIDs[0] = "size-regular"
	clone.DeliveryAddress.City = "Shelbyville"

	assert.Equal(t, 1, cart.Lines[0].Quantity)
	assert.Equal(t, "size-large", cart.Lines[0].SelectedOptionIDs[0])
	assert.Equal(t, "Springfield", cart.DeliveryAddress.City)
}

func TestCartReset(t *testing.T) {
	cart := NewCart("guest:abc", time.Now())
	cart.OrderType = OrderTypePickup
	cart.Lines = []CartLine{{ID: "ln-1"}}
	cart.DeliveryAddress = &Address{Line1: "x", City: "y"}

	cart.Reset()

	assert.Empty(t, cart.Lines)
	assert.Equal(t, OrderTypeDelivery, cart.OrderType)
	assert.Nil(t, cart.DeliveryAddress)
}

func TestCartLine_SameConfiguration(t *testing.T) {
	line := CartLine{ItemID: "margherita", SpecialInstructions: "no basil", SelectedOptionIDs: []string{"a", "b"}}

	assert.True(t, line.SameConfiguration("margherita", "no basil", []string{"a", "b"}))
	assert.False(t, line.SameConfiguration("margherita", "no basil", []string{"a"}))
	assert.False(t, line.SameConfiguration("margherita", "", []string{"a", "b"}))
	assert.False(t, line.SameConfiguration("lemonade", "no basil", []string{"a", "b"}))
}

func TestModifierGroup_EffectiveMin(t *testing.T) {
	assert.Equal(t, 0, ModifierGroup{MinSelect: 0, MaxSelect: 2}.EffectiveMin())
	assert.Equal(t, 1, ModifierGroup{IsRequired: true, MinSelect: 0, MaxSelect: 1}.EffectiveMin())
	assert.Equal(t, 2, ModifierGroup{IsRequired: true, MinSelect: 2, MaxSelect: 3}.EffectiveMin())
}

func TestAddress_Deliverable(t *testing.T) {
	var nilAddr *Address
	assert.False(t, nilAddr.Deliverable())
	assert.False(t, (&Address{Line1: "  ", City: "Springfield"}).Deliverable())
	assert.False(t, (&Address{Line1: "1 Main St"}).Deliverable())
	assert.True(t, (&Address{Line1: "1 Main St", City: "Springfield"}).Deliverable())
}

func TestUser_SavedAddress(t *testing.T) {
	var nobody *User
	assert.Nil(t, nobody.SavedAddress())
	assert.Nil(t, (&User{AddressLine1: "1 Main St"}).SavedAddress())

	addr := (&User{AddressLine1: "1 Main St", AddressCity: "Springfield"}).SavedAddress()
	require.NotNil(t, addr)
	assert.Equal(t, "Springfield", addr.City)
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("add item: %w", NewError(CodeMinimumOrderNotMet, http.StatusConflict, "minimum order for delivery is $%.2f", 15.0))

	assert.True(t, errors.Is(err, ErrMinimumOrderNotMet))
	assert.False(t, errors.Is(err, ErrCartEmpty))

	var appErr *Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Contains(t, appErr.Message, "$15.00")
}

func TestParseOrderType(t *testing.T) {
	ot, ok := ParseOrderType(" pickup ")
	assert.True(t, ok)
	assert.Equal(t, OrderTypePickup, ot)

	_, ok = ParseOrderType("TAKEAWAY")
	assert.False(t, ok)
}

func TestParsePaymentMethod(t *testing.T) {
	pm, ok := ParsePaymentMethod("")
	assert.True(t, ok)
	assert.Equal(t, PaymentMethodCard, pm)

	pm, ok = ParsePaymentMethod("cash")
	assert.True(t, ok)
	assert.Equal(t, PaymentMethodCash, pm)

	_, ok = ParsePaymentMethod("BITCOIN")
	assert.False(t, ok)
}
