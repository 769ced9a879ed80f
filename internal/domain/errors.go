package domain

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	CodeInvalidQuantity            ErrorCode = "INVALID_QUANTITY"
	CodeInvalidSpecialInstructions ErrorCode = "INVALID_SPECIAL_INSTRUCTIONS"
	CodeInvalidInput               ErrorCode = "INVALID_INPUT"
	CodeItemUnavailable            ErrorCode = "ITEM_UNAVAILABLE"
	CodeCartItemNotFound           ErrorCode = "CART_ITEM_NOT_FOUND"
	CodeInvalidModifierSelection   ErrorCode = "INVALID_MODIFIER_SELECTION"
	CodeModifierRuleViolation      ErrorCode = "MODIFIER_RULE_VIOLATION"
	CodeCartEmpty                  ErrorCode = "CART_EMPTY"
	CodeMinimumOrderNotMet         ErrorCode = "MINIMUM_ORDER_NOT_MET"
	CodeDeliveryAddressRequired    ErrorCode = "DELIVERY_ADDRESS_REQUIRED"
	CodeAuthRequired               ErrorCode = "AUTH_REQUIRED"
	CodePhoneNotVerified           ErrorCode = "PHONE_NOT_VERIFIED"
	CodeOrderNotFound              ErrorCode = "ORDER_NOT_FOUND"
	CodeCatalogUnavailable         ErrorCode = "CATALOG_UNAVAILABLE"
)

// Error is a failure the caller can act on. Status is the HTTP status the
// transport layer should answer with.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code, so the sentinels below can be used
// with errors.Is regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func NewError(code ErrorCode, status int, format string, args ...any) *Error {
	return &Error{Code: code, Status: status, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrInvalidQuantity            = &Error{Code: CodeInvalidQuantity, Status: http.StatusBadRequest, Message: "quantity must be an integer between 1 and 20"}
	ErrInvalidSpecialInstructions = &Error{Code: CodeInvalidSpecialInstructions, Status: http.StatusBadRequest, Message: "special instructions must be at most 280 characters"}
	ErrInvalidInput               = &Error{Code: CodeInvalidInput, Status: http.StatusBadRequest, Message: "invalid input"}
	ErrItemUnavailable            = &Error{Code: CodeItemUnavailable, Status: http.StatusConflict, Message: "item is not available"}
	ErrCartItemNotFound           = &Error{Code: CodeCartItemNotFound, Status: http.StatusNotFound, Message: "cart item not found"}
	ErrInvalidModifierSelection   = &Error{Code: CodeInvalidModifierSelection, Status: http.StatusBadRequest, Message: "invalid modifier selection"}
	ErrModifierRuleViolation      = &Error{Code: CodeModifierRuleViolation, Status: http.StatusBadRequest, Message: "modifier selection violates group rules"}
	ErrCartEmpty                  = &Error{Code: CodeCartEmpty, Status: http.StatusConflict, Message: "cart is empty"}
	ErrMinimumOrderNotMet         = &Error{Code: CodeMinimumOrderNotMet, Status: http.StatusConflict, Message: "minimum order total not met"}
	ErrDeliveryAddressRequired    = &Error{Code: CodeDeliveryAddressRequired, Status: http.StatusBadRequest, Message: "a delivery address with line 1 and city is required"}
	ErrAuthRequired               = &Error{Code: CodeAuthRequired, Status: http.StatusUnauthorized, Message: "sign in to place an order"}
	ErrPhoneNotVerified           = &Error{Code: CodePhoneNotVerified, Status: http.StatusForbidden, Message: "verify your phone number to place an order"}
	ErrOrderNotFound              = &Error{Code: CodeOrderNotFound, Status: http.StatusNotFound, Message: "order not found"}
	ErrCatalogUnavailable         = &Error{Code: CodeCatalogUnavailable, Status: http.StatusServiceUnavailable, Message: "menu is temporarily unavailable"}
)

func InvalidInput(format string, args ...any) *Error {
	return NewError(CodeInvalidInput, http.StatusBadRequest, format, args...)
}
