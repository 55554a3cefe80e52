package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("Your Item already exist")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")

	ErrInvalidNumberFormat = errors.New("invalid number format")
	ErrInvalidChainId      = errors.New("invalid chain id")
	ErrInvalidCurrency     = errors.New("invalid currency")
	ErrNoPriceFeed         = errors.New("no price feed")

	// request error
	ErrInvalidAddress = errors.New("Invalid address")
	ErrInvalidToken   = errors.New("Invalid token")

	// auction errors
	ErrUnauthorizedAsset    = errors.New("caller is not owner nor approved for asset")
	ErrInvalidDuration      = errors.New("auction duration must be positive")
	ErrFeeTooHigh           = errors.New("fee percentage cannot exceed 10%")
	ErrBidTooLow            = errors.New("bid does not exceed current highest bid")
	ErrBelowReserve         = errors.New("first bid below reserve price")
	ErrAuctionClosed        = errors.New("auction is not active")
	ErrAuctionNotYetEndable = errors.New("auction has not reached its end time")
	ErrTransferFailed       = errors.New("asset or fund transfer failed")
	ErrNoRefundAvailable    = errors.New("no refundable balance")
	ErrSelfBid              = errors.New("seller cannot bid on own auction")
	ErrInsufficientFunds    = errors.New("insufficient deposited balance")
)
