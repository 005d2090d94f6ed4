package tracker

import "errors"

var (
	errEmptyFQDN    = errors.New("passpoint connection without fqdn")
	errBadNetworkID = errors.New("connection with negative network id")
)
