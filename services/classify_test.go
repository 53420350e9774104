package services

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"

	"tutor-mailer/errlog"
)

func TestClassifyDialError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want errlog.Transfer
	}{
		{"dns", &net.DNSError{Err: "no such host", Name: "smtp.invalid", IsNotFound: true}, errlog.TransferConnect},
		{"dial", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, errlog.TransferConnect},
		{"bad credentials", &textproto.Error{Code: 535, Msg: "authentication failed"}, errlog.TransferAuth},
		{"auth required", fmt.Errorf("wrapped: %w", &textproto.Error{Code: 530, Msg: "must issue STARTTLS"}), errlog.TransferAuth},
		{"other reply", &textproto.Error{Code: 554, Msg: "transaction failed"}, errlog.TransferProtocol},
		{"eof", io.EOF, errlog.TransferProtocol},
		{"plain auth refused", errors.New("unencrypted connection"), errlog.TransferAuth},
		{"unknown", errors.New("something else"), errlog.TransferUnknown},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, classifyDialError(tt.err))
		})
	}
}
