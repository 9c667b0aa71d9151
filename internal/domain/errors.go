package domain

import "errors"

// Sentinel errors shared by repositories and services.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// Sentinel errors for exclusion and elf management.
var (
	ErrDuplicateExclusion = errors.New("exclusion already exists")
	ErrProtectedExclusion = errors.New("exclusion is managed by an elf relationship")
	ErrNotDrawn           = errors.New("group has not been drawn yet")
)
