//go:build linux

// Package wayland holds a minimal Wayland client that owns the selection
// through wlr-data-control. Only the requests and events needed to offer a
// fixed set of representations are implemented.
package wayland

import (
	"encoding/binary"
	"fmt"
	"syscall"
)

var le = binary.LittleEndian

// headerSize is object id (4) plus opcode and size packed in one word (4).
const headerSize = 8

// maxFdsPerRead bounds the ancillary buffer for SCM_RIGHTS.
const maxFdsPerRead = 8

// event is one decoded server message. fd is -1 when none was attached.
type event struct {
	object  uint32
	opcode  uint16
	payload []byte
	fd      int
}

// conn buffers partial reads and queued descriptors from the compositor.
type conn struct {
	fd      int
	pending []byte
	fds     []int
}

func dial(path string) (*conn, error) {
	fd, err := syscall.Socket(syscall.AF_UNIX, syscall.SOCK_STREAM|syscall.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	if err := syscall.Connect(fd, &syscall.SockaddrUnix{Name: path}); err != nil {
		syscall.Close(fd) //nolint:errcheck
		return nil, err
	}
	return &conn{fd: fd}, nil
}

func (c *conn) close() {
	for _, fd := range c.fds {
		syscall.Close(fd) //nolint:errcheck
	}
	c.fds = nil
	syscall.Close(c.fd) //nolint:errcheck
}

// request writes one message addressed to object.
func (c *conn) request(object uint32, opcode uint16, args ...[]byte) error {
	size := headerSize
	for _, a := range args {
		size += len(a)
	}
	if size > 0xffff {
		return fmt.Errorf("wayland: message too large (%d bytes)", size)
	}

	msg := make([]byte, headerSize, size)
	le.PutUint32(msg[0:], object)
	le.PutUint32(msg[4:], uint32(size)<<16|uint32(opcode))
	for _, a := range args {
		msg = append(msg, a...)
	}
	return writeFull(c.fd, msg)
}

// next blocks until a whole event is buffered and returns it.
func (c *conn) next() (event, error) {
	for {
		if ev, ok := c.pop(); ok {
			return ev, nil
		}
		if err := c.fill(); err != nil {
			return event{fd: -1}, err
		}
	}
}

func (c *conn) pop() (event, bool) {
	if len(c.pending) < headerSize {
		return event{}, false
	}
	word := le.Uint32(c.pending[4:8])
	size := int(word >> 16)
	if size < headerSize || len(c.pending) < size {
		return event{}, false
	}

	ev := event{
		object:  le.Uint32(c.pending[0:4]),
		opcode:  uint16(word & 0xffff),
		payload: append([]byte(nil), c.pending[headerSize:size]...),
		fd:      -1,
	}
	c.pending = c.pending[size:]
	if len(c.fds) > 0 {
		ev.fd = c.fds[0]
		c.fds = c.fds[1:]
	}
	return ev, true
}

func (c *conn) fill() error {
	buf := make([]byte, 4096)
	oob := make([]byte, syscall.CmsgSpace(4*maxFdsPerRead))
	n, oobn, _, _, err := syscall.Recvmsg(c.fd, buf, oob, syscall.MSG_CMSG_CLOEXEC)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("wayland: connection closed")
	}
	c.pending = append(c.pending, buf[:n]...)

	if oobn == 0 {
		return nil
	}
	msgs, err := syscall.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return nil
	}
	for i := range msgs {
		if rights, err := syscall.ParseUnixRights(&msgs[i]); err == nil {
			c.fds = append(c.fds, rights...)
		}
	}
	return nil
}

func writeFull(fd int, data []byte) error {
	for len(data) > 0 {
		n, err := syscall.Write(fd, data)
		if err == syscall.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

func uint32Arg(v uint32) []byte {
	b := make([]byte, 4)
	le.PutUint32(b, v)
	return b
}

// stringArg encodes a length-prefixed, NUL-terminated string padded to a
// 4-byte boundary.
func stringArg(s string) []byte {
	n := len(s) + 1
	padded := (n + 3) &^ 3
	b := make([]byte, 4+padded)
	le.PutUint32(b, uint32(n))
	copy(b[4:], s)
	return b
}

// readString decodes a string argument and returns the remaining payload.
func readString(data []byte) (string, []byte, error) {
	if len(data) < 4 {
		return "", data, fmt.Errorf("wayland: truncated string length")
	}
	n := int(le.Uint32(data))
	data = data[4:]
	if n == 0 {
		return "", data, nil
	}
	padded := (n + 3) &^ 3
	if len(data) < padded {
		return "", data, fmt.Errorf("wayland: truncated string body")
	}
	return string(data[:n-1]), data[padded:], nil
}
