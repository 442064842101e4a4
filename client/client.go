package client

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"

	"govault/protocol"
)

var (
	// ErrServer carries an ERROR response from the server.
	ErrServer = errors.New("server error")

	// ErrUnexpectedResponse means the server answered with a response
	// kind that the issued command can never produce.
	ErrUnexpectedResponse = errors.New("unexpected response")
)

/*
Client is a synchronous connection to a server.

One request is in flight at a time: send writes a command, reads
exactly one response line, and returns. The zero concurrency support
is deliberate; callers wanting parallelism open more clients.
*/
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
}

/*
Dial connects to a server at addr.
*/
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
	}, nil
}

/*
send performs one request/response exchange.
*/
func (c *Client) send(cmd protocol.Command) (protocol.Response, error) {
	if _, err := c.writer.WriteString(cmd.Line()); err != nil {
		return protocol.Response{}, fmt.Errorf("send: %w", err)
	}
	if err := c.writer.Flush(); err != nil {
		return protocol.Response{}, fmt.Errorf("send: %w", err)
	}

	line, err := c.reader.ReadString('\n')
	if err != nil {
		return protocol.Response{}, fmt.Errorf("read response: %w", err)
	}

	return protocol.ParseResponse(strings.TrimRight(line, "\r\n"))
}

/*
Set stores value under key.
*/
func (c *Client) Set(key, value string) error {
	resp, err := c.send(protocol.Command{Op: protocol.OpSet, Key: key, Value: value})
	if err != nil {
		return err
	}
	switch resp.Kind {
	case protocol.ResponseOK:
		return nil
	case protocol.ResponseError:
		return fmt.Errorf("%w: %s", ErrServer, resp.Payload)
	default:
		return fmt.Errorf("%w to SET: %v", ErrUnexpectedResponse, resp.Kind)
	}
}

/*
Get returns the value for key and whether it exists.
*/
func (c *Client) Get(key string) (string, bool, error) {
	resp, err := c.send(protocol.Command{Op: protocol.OpGet, Key: key})
	if err != nil {
		return "", false, err
	}
	switch resp.Kind {
	case protocol.ResponseValue:
		return resp.Payload, true, nil
	case protocol.ResponseNotFound:
		return "", false, nil
	case protocol.ResponseError:
		return "", false, fmt.Errorf("%w: %s", ErrServer, resp.Payload)
	default:
		return "", false, fmt.Errorf("%w to GET: %v", ErrUnexpectedResponse, resp.Kind)
	}
}

/*
Delete removes key and reports whether it was present.
*/
func (c *Client) Delete(key string) (bool, error) {
	resp, err := c.send(protocol.Command{Op: protocol.OpDelete, Key: key})
	if err != nil {
		return false, err
	}
	switch resp.Kind {
	case protocol.ResponseOK:
		return true, nil
	case protocol.ResponseNotFound:
		return false, nil
	case protocol.ResponseError:
		return false, fmt.Errorf("%w: %s", ErrServer, resp.Payload)
	default:
		return false, fmt.Errorf("%w to DELETE: %v", ErrUnexpectedResponse, resp.Kind)
	}
}

/*
Close half-closes the write side, telling the server this client is
done, then releases the connection.
*/
func (c *Client) Close() error {
	if tcp, ok := c.conn.(*net.TCPConn); ok {
		tcp.CloseWrite()
	}
	return c.conn.Close()
}
