package tcp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/camship/internal/domain"
)

func TestConn_ReadLineAndWrite(t *testing.T) {
	client, server := net.Pipe()
	c := NewConn(client)
	defer c.Close()

	go func() {
		buf := make([]byte, 5)
		_, _ = io.ReadFull(server, buf)
		_, _ = server.Write([]byte("HTTP/1.1 200 OK\r\nServer: x\r\n\r\ntail"))
		server.Close()
	}()

	n, err := c.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	lines := []string{}
	for {
		line, err := c.ReadLine()
		if err != nil {
			assert.ErrorIs(t, err, io.EOF)
			lines = append(lines, line)
			break
		}
		lines = append(lines, line)
	}
	assert.Equal(t, []string{"HTTP/1.1 200 OK", "Server: x", "", "tail"}, lines)
}

func TestConn_ReadLineTooLong(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	c := NewConn(client)
	defer c.Close()

	go func() {
		_, _ = server.Write(bytes.Repeat([]byte("a"), MaxLineLength+100))
	}()

	line, err := c.ReadLine()
	assert.ErrorIs(t, err, ErrLineTooLong)
	assert.Empty(t, line)
}

func TestConn_UnusableAfterClose(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	c := NewConn(client)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err := c.Write([]byte("x"))
	assert.ErrorIs(t, err, domain.ErrConnClosed)
	_, err = c.ReadLine()
	assert.ErrorIs(t, err, domain.ErrConnClosed)
}

func TestDialer_Dial(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan struct{})
	go func() {
		c, err := ln.Accept()
		if err == nil {
			c.Close()
		}
		close(accepted)
	}()

	conn, err := NewDialer().Dial(context.Background(), ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	<-accepted
}

func TestDialer_DialRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = NewDialer().Dial(ctx, addr)
	require.Error(t, err)
	var opErr *net.OpError
	assert.True(t, errors.As(err, &opErr))
}
