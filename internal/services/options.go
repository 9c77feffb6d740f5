package services

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Options carries the economy and account parameters the services share.
type Options struct {
	SignupBonus     int64
	FitcoinsPerEuro int64
	WagerFeedLimit  int
	ResetTokenTTL   time.Duration
	PasswordMinLen  int
	BcryptCost      int
}

func DefaultOptions() Options {
	return Options{
		SignupBonus:     200,
		FitcoinsPerEuro: 10,
		WagerFeedLimit:  50,
		ResetTokenTTL:   time.Hour,
		PasswordMinLen:  6,
		BcryptCost:      bcrypt.DefaultCost,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.FitcoinsPerEuro <= 0 {
		o.FitcoinsPerEuro = d.FitcoinsPerEuro
	}
	if o.WagerFeedLimit <= 0 {
		o.WagerFeedLimit = d.WagerFeedLimit
	}
	if o.ResetTokenTTL <= 0 {
		o.ResetTokenTTL = d.ResetTokenTTL
	}
	if o.PasswordMinLen <= 0 {
		o.PasswordMinLen = d.PasswordMinLen
	}
	if o.BcryptCost == 0 {
		o.BcryptCost = d.BcryptCost
	}
	return o
}
