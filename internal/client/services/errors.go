package services

import (
	"errors"

	"github.com/dmitrijs2005/jobkeeper/internal/common"
)

var (
	ErrEmptyPassword     = errors.New("password cannot be empty")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrSaltMissing       = errors.New("salt not found in local database")
	ErrInvalidState      = errors.New("operation not allowed in current vault state")
	ErrResetNotConfirmed = errors.New("reset requires two confirmations")
	ErrInvalidBackup     = errors.New("invalid backup file")

	ErrNotFound         = common.ErrNotFound
	ErrValidation       = common.ErrValidation
	ErrInvalidStatus    = errors.New("invalid application status")
	ErrInvalidCategory  = errors.New("invalid prep category")
	ErrUnknownItemType  = errors.New("unknown toolbox item type")
	ErrInvalidItemIndex = errors.New("toolbox item index out of range")
)
