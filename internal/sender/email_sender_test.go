package sender

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"
)

// listen 启动本地 TCP 监听，handle 处理每个连接
func listen(t *testing.T, handle func(conn net.Conn)) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go handle(conn)
		}
	}()

	host, port, _ := net.SplitHostPort(ln.Addr().String())
	p, _ := strconv.Atoi(port)
	return host, p
}

func TestSendEmail_HungServerRespectsDeadline(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	// 接受连接后不发送 greeting
	host, port := listen(t, func(conn net.Conn) {
		defer conn.Close()
		<-release
	})

	s := NewSMTPEmailSender(host, port, "", "", "noreply@trust.org", false)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := s.SendEmail(ctx, Message{To: "org@trust.org", Subject: "s", Text: "t"})
	if err == nil {
		t.Fatal("SendEmail() succeeded against a silent server")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("SendEmail() took %v, want it bounded by the context deadline", elapsed)
	}
}

func TestSendEmail_CanceledContext(t *testing.T) {
	s := NewSMTPEmailSender("127.0.0.1", 1, "", "", "noreply@trust.org", false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.SendEmail(ctx, Message{To: "org@trust.org"}); err == nil {
		t.Error("SendEmail() succeeded with canceled context")
	}
}

func TestSendEmail_PlainSession(t *testing.T) {
	received := make(chan string, 1)
	host, port := listen(t, func(conn net.Conn) {
		defer conn.Close()
		r := bufio.NewReader(conn)
		write := func(line string) { conn.Write([]byte(line + "\r\n")) }

		write("220 localhost ESMTP")
		var data strings.Builder
		inData := false
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if inData {
				if line == ".\r\n" {
					inData = false
					received <- data.String()
					write("250 OK")
					continue
				}
				data.WriteString(line)
				continue
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				write("250 localhost")
			case strings.HasPrefix(cmd, "DATA"):
				inData = true
				write("354 go ahead")
			case strings.HasPrefix(cmd, "QUIT"):
				write("221 bye")
				return
			default:
				write("250 OK")
			}
		}
	})

	s := NewSMTPEmailSender(host, port, "", "", "Temple Trust <noreply@trust.org>", false)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.SendEmail(ctx, Message{
		To:      "org@trust.org",
		ReplyTo: "donor@example.com",
		Subject: "New query",
		Text:    "hello",
	})
	if err != nil {
		t.Fatalf("SendEmail() error = %v", err)
	}

	select {
	case body := <-received:
		if !strings.Contains(body, "Subject: New query") || !strings.Contains(body, "donor@example.com") {
			t.Errorf("message = %q", body)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not receive message")
	}
}
