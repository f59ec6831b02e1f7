package adapters

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"yangstage/internal/ports"
	"yangstage/internal/shared"
	"yangstage/internal/types"
)

const (
	netconfBaseNS      = "urn:ietf:params:xml:ns:netconf:base:1.0"
	netconfBaseCap     = "urn:ietf:params:netconf:base:1.0"
	netconfEOM         = "]]>]]>"
	netconfSubsystem   = "netconf"
	defaultNetconfPort = 830
	defaultDialTimeout = 30 * time.Second
	defaultKnownHosts  = "~/.ssh/known_hosts"
)

// NetconfSSHDispatcher speaks NETCONF 1.0 (end-of-message framing) over
// the SSH "netconf" subsystem.  Requests are serialized.
type NetconfSSHDispatcher struct {
	mu      sync.Mutex
	client  io.Closer
	session io.Closer
	conn    *netconfConn

	// closeTimeout bounds the wait for the close-session reply.
	closeTimeout time.Duration
}

// DialNetconf connects to the device and completes the hello exchange.
func DialNetconf(ctx context.Context, cfg types.DeviceConfig, decoder ports.DecoderPort) (*NetconfSSHDispatcher, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("device host is empty")
	}
	if strings.TrimSpace(cfg.Username) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("device username is empty")
	}
	clientConfig, err := sshClientConfig(cfg)
	if err != nil {
		return nil, err
	}
	port := cfg.Port
	if port == 0 {
		port = defaultNetconfPort
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))

	dialer := net.Dialer{Timeout: clientConfig.Timeout}
	tcpConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("protocol error: failed to connect to " + addr).
			WithCause(err)
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(tcpConn, addr, clientConfig)
	if err != nil {
		_ = tcpConn.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("protocol error: ssh handshake with " + addr + " failed").
			WithCause(err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)

	session, err := client.NewSession()
	if err != nil {
		_ = client.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("protocol error: failed to open ssh session").
			WithCause(err)
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		_ = client.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("protocol error: failed to open session stdin").
			WithCause(err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		_ = client.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("protocol error: failed to open session stdout").
			WithCause(err)
	}
	if err := session.RequestSubsystem(netconfSubsystem); err != nil {
		_ = client.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("protocol error: device refused the netconf subsystem").
			WithCause(err)
	}

	conn := newNetconfConn(stdout, stdin, decoder)
	if err := conn.hello(); err != nil {
		_ = session.Close()
		_ = client.Close()
		return nil, err
	}
	log.Ctx(ctx).Debug().
		Str("device", addr).
		Str("session_id", conn.sessionID).
		Int("capabilities", len(conn.capabilities)).
		Msg("netconf session established")

	return &NetconfSSHDispatcher{
		client:       client,
		session:      session,
		conn:         conn,
		closeTimeout: clientConfig.Timeout,
	}, nil
}

// Dispatch sends request as the body of an <rpc> and returns the reply.
// Cancelling ctx tears down the session.
func (d *NetconfSSHDispatcher) Dispatch(ctx context.Context, request []byte) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	type result struct {
		reply []byte
		err   error
	}
	done := make(chan result, 1)
	go func() {
		reply, err := d.conn.rpc(request)
		done <- result{reply: reply, err: err}
	}()
	select {
	case res := <-done:
		return res.reply, res.err
	case <-ctx.Done():
		_ = d.session.Close()
		return nil, ctx.Err()
	}
}

// Close sends close-session and then tears down the SSH session and
// connection, whether or not the device answered within closeTimeout.
func (d *NetconfSSHDispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	timeout := d.closeTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = d.conn.rpc([]byte("<close-session/>"))
	}()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		log.Warn().Dur("timeout", timeout).Msg("device did not answer close-session; dropping the connection")
	}

	_ = d.session.Close()
	return d.client.Close()
}

func sshClientConfig(cfg types.DeviceConfig) (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if cfg.KeyFile != "" {
		keyPath, err := shared.ExpandPath(cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		pem, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("failed to read ssh key file: " + keyPath).
				WithCause(err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to parse ssh key file: " + keyPath).
				WithCause(err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		password := cfg.Password
		auth = append(auth, ssh.Password(password))
		auth = append(auth, ssh.KeyboardInteractive(func(_ string, _ string, questions []string, _ []bool) ([]string, error) {
			answers := make([]string, len(questions))
			for i := range answers {
				answers[i] = password
			}
			return answers, nil
		}))
	}
	if len(auth) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("device credentials missing: set a password or key file")
	}

	hostKey, err := hostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	return &ssh.ClientConfig{
		User:            cfg.Username,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         timeout,
	}, nil
}

func hostKeyCallback(cfg types.DeviceConfig) (ssh.HostKeyCallback, error) {
	if cfg.InsecureHostKey {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	path := cfg.KnownHosts
	if path == "" {
		path = defaultKnownHosts
	}
	expanded, err := shared.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	callback, err := knownhosts.New(filepath.Clean(expanded))
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("failed to load known_hosts file " + expanded + "; set device.insecure_host_key to skip host key checks").
			WithCause(err)
	}
	return callback, nil
}

// netconfConn implements the framing and hello exchange over any
// reader/writer pair.
type netconfConn struct {
	r       *bufio.Reader
	w       io.Writer
	decoder ports.DecoderPort

	messageID    int
	sessionID    string
	capabilities []string
}

func newNetconfConn(r io.Reader, w io.Writer, decoder ports.DecoderPort) *netconfConn {
	return &netconfConn{r: bufio.NewReader(r), w: w, decoder: decoder}
}

func (c *netconfConn) hello() error {
	hello := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<hello xmlns="` + netconfBaseNS + `"><capabilities>` +
		`<capability>` + netconfBaseCap + `</capability>` +
		`</capabilities></hello>`
	if err := c.write([]byte(hello)); err != nil {
		return err
	}
	raw, err := readNetconfMessage(c.r)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("protocol error: failed to read server hello").
			WithCause(err)
	}
	node, err := c.decoder.Decode(raw)
	if err != nil {
		return err
	}
	if node.Name != "hello" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("protocol error: expected hello from server, got " + node.Name)
	}
	c.sessionID = node.ChildText("session-id")
	for _, capability := range node.Child("capabilities").ChildrenNamed("capability") {
		c.capabilities = append(c.capabilities, strings.TrimSpace(capability.Text))
	}
	for _, capability := range c.capabilities {
		if capability == netconfBaseCap {
			return nil
		}
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("protocol error: server does not support " + netconfBaseCap)
}

func (c *netconfConn) rpc(body []byte) ([]byte, error) {
	c.messageID++
	id := strconv.Itoa(c.messageID)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<rpc message-id="%s" xmlns="%s">`, id, netconfBaseNS)
	buf.Write(body)
	buf.WriteString(`</rpc>`)
	if err := c.write(buf.Bytes()); err != nil {
		return nil, err
	}
	reply, err := readNetconfMessage(c.r)
	if err != nil {
		return nil, fmt.Errorf("read reply to message %s: %w", id, err)
	}
	node, err := c.decoder.Decode(reply)
	if err != nil {
		return nil, err
	}
	if got := node.Attrs["message-id"]; got != "" && got != id {
		return nil, fmt.Errorf("reply message-id %s does not match request %s", got, id)
	}
	return reply, nil
}

func (c *netconfConn) write(message []byte) error {
	if _, err := c.w.Write(append(message, netconfEOM...)); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("protocol error: failed to write to device").
			WithCause(err)
	}
	return nil
}

// readNetconfMessage reads up to and excluding the end-of-message marker.
func readNetconfMessage(r *bufio.Reader) ([]byte, error) {
	var buf []byte
	for {
		chunk, err := r.ReadBytes('>')
		buf = append(buf, chunk...)
		if bytes.HasSuffix(buf, []byte(netconfEOM)) {
			return bytes.TrimSpace(buf[:len(buf)-len(netconfEOM)]), nil
		}
		if err != nil {
			if err == io.EOF && len(bytes.TrimSpace(buf)) > 0 {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}
}

var _ ports.DispatcherPort = (*NetconfSSHDispatcher)(nil)
