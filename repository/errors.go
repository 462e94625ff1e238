package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNoRecord       = errors.New("no matching record found")
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrTokenExists    = errors.New("a live token already exists for this user and action")
)

const uniqueViolation = pq.ErrorCode("23505")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
