package edgebootsdk

import "errors"

var (
	ErrCheckoutDirRequired = errors.New("edgeboot-sdk: checkout dir required")
	ErrInvalidProfile      = errors.New("edgeboot-sdk: invalid profile")
	ErrInvalidDepth        = errors.New("edgeboot-sdk: depth must not be negative")
)
