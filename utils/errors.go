package utils

import errors "github.com/go-errors/errors"

var (
	NotFoundError      = errors.New("Not found")
	InvalidArgError    = errors.New("Invalid Argument")
	InvalidConfigError = errors.New("Invalid config")
)
