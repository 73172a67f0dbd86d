package exerrors

import (
	"errors"
)

var (
	ErrMerchantNotFound    = errors.New("merchant not found")
	ErrAmountOutOfLimits   = errors.New("amount outside merchant limits")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidOrderState   = errors.New("order state does not allow this action")
	ErrStrategyNotFound    = errors.New("strategy not found")
	ErrInvalidStrategy     = errors.New("strategy parameters invalid")
	ErrUpstreamRateLimited = errors.New("upstream rate limited")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamBadResponse = errors.New("upstream response malformed")
	ErrCoinNotFound        = errors.New("coin not found")
)

var (
	ErrKeyNotFound              = errors.New("key not found")
	ErrInvalidOrder             = errors.New("order parameters invalid")
	ErrPaymentMethodNotAccepted = errors.New("payment method not accepted by merchant")
)
