package ldap

import (
	"errors"
	"net"

	"github.com/go-ldap/ldap/v3"
)

// transientCodes are result codes meaning the server or the connection is
// temporarily unusable.
var transientCodes = []uint16{
	ldap.ErrorNetwork,
	ldap.LDAPResultBusy,
	ldap.LDAPResultUnavailable,
	ldap.LDAPResultTimeLimitExceeded,
}

// isTransient reports whether err is a connection-down or timeout failure.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	for _, code := range transientCodes {
		if ldap.IsErrorWithCode(err, code) {
			return true
		}
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// isSizeLimit reports whether err only signals that more entries matched
// than were requested.
func isSizeLimit(err error) bool {
	return ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded)
}
