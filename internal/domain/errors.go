package domain

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrEmptyResult = errors.New("no results for code")
	ErrRateLimited = errors.New("rate limit exceeded")
)
