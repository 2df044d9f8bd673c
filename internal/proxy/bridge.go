package proxy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
)

// DefaultBridgeAddr is the loopback address the sandbox's HTTP clients
// talk to in place of a vendor's real host. It is reachable only inside
// the sandbox's network namespace — internal/sandbox.Manager is what
// actually confines that, Bridge itself just relays whatever reaches this
// address. AnthropicProvider's default base URL is this address plus its
// Route.Prefix; OpenAIProvider and DashScopeProvider default to the
// vendor's real host, and cmd/agentrun passes them a base URL on this
// address (with an empty key) explicitly.
const DefaultBridgeAddr = "127.0.0.1:8737"

// Bridge runs inside the sandbox's network namespace and forwards every
// TCP connection it accepts to the host's Unix domain socket proxy. The
// sandboxed process's HTTP client talks to Bridge's loopback address as
// if it were the vendor API directly; Bridge itself never sees a
// credential — it is a dumb byte pipe, the credential injection happens
// entirely on the host side of the socket.
type Bridge struct {
	listenAddr string
	socketPath string
	log        *slog.Logger
}

func NewBridge(listenAddr, socketPath string, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{listenAddr: listenAddr, socketPath: socketPath, log: log}
}

// Serve accepts connections on b.listenAddr until ctx is cancelled.
func (b *Bridge) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", b.listenAddr)
	if err != nil {
		return fmt.Errorf("proxy bridge: listen on %s: %w", b.listenAddr, err)
	}
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("proxy bridge: accept: %w", err)
			}
		}
		go b.relay(conn)
	}
}

func (b *Bridge) relay(client net.Conn) {
	defer client.Close()

	upstream, err := net.Dial("unix", b.socketPath)
	if err != nil {
		b.log.Error("proxy bridge: dial host socket", "err", err)
		// The host proxy is unreachable: answer the SDK with a 502.
		_, _ = client.Write([]byte("HTTP/1.1 502 Bad Gateway\r\nContent-Length: 0\r\nConnection: close\r\n\r\n"))
		return
	}
	defer upstream.Close()

	done := make(chan struct{}, 2)
	go func() {
		_, _ = io.Copy(upstream, client)
		if c, ok := upstream.(interface{ CloseWrite() error }); ok {
			_ = c.CloseWrite()
		}
		done <- struct{}{}
	}()
	go func() {
		_, _ = io.Copy(client, upstream)
		if c, ok := client.(interface{ CloseWrite() error }); ok {
			_ = c.CloseWrite()
		}
		done <- struct{}{}
	}()
	<-done
	<-done
}
