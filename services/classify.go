package services

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/textproto"
	"strings"

	"tutor-mailer/errlog"
)

// classifyDialError maps an error from connect/STARTTLS/AUTH onto a transfer kind.
func classifyDialError(err error) errlog.Transfer {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		switch tpErr.Code {
		case 530, 534, 535, 538:
			return errlog.TransferAuth
		default:
			return errlog.TransferProtocol
		}
	}

	var dnsErr *net.DNSError
	var netErr net.Error
	if errors.As(err, &dnsErr) || errors.As(err, &netErr) {
		return errlog.TransferConnect
	}

	var recordErr tls.RecordHeaderError
	var certErr *tls.CertificateVerificationError
	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	if errors.As(err, &recordErr) || errors.As(err, &certErr) ||
		errors.As(err, &unknownAuthority) || errors.As(err, &hostnameErr) {
		return errlog.TransferConnect
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errlog.TransferProtocol
	}

	// net/smtp reports client-side auth refusals as plain strings
	msg := err.Error()
	if strings.Contains(msg, "unencrypted connection") || strings.Contains(msg, "doesn't support AUTH") {
		return errlog.TransferAuth
	}

	return errlog.TransferUnknown
}
