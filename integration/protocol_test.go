//go:build integration
// +build integration

package integration

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"
	"testing"
	"time"
)

var serverAddr = getenv("E2E_ADDR", "localhost:8888")

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// TestProtocol_E2E runs one admin session against a live server. It
// only adds and then removes its own product, so it can be pointed at
// a long-running instance.
func TestProtocol_E2E(t *testing.T) {
	conn, err := net.DialTimeout("tcp", serverAddr, 5*time.Second)
	if err != nil {
		t.Fatalf("dial %s: %v", serverAddr, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(30 * time.Second))

	r := bufio.NewReader(conn)
	readLine := func() string {
		t.Helper()
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		return strings.TrimRight(line, "\n")
	}
	send := func(line string) {
		t.Helper()
		if _, err := fmt.Fprintf(conn, "%s\n", line); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	command := func(cmd string) string {
		t.Helper()
		send(cmd)
		var lines []string
		for {
			line := readLine()
			if line == "---" {
				return strings.Join(lines, "\n")
			}
			lines = append(lines, line)
		}
	}

	if got := readLine(); got != "=== REAL-TIME STOCK MANAGEMENT SYSTEM ===" {
		t.Fatalf("banner = %q", got)
	}
	readLine() // username prompt
	send(fmt.Sprintf("e2e_%d", time.Now().UnixNano()))
	readLine() // admin prompt
	send("yes")
	readLine() // welcome
	readLine() // blank
	readLine() // help hint

	added := command("ADD_PRODUCT E2EWidget 7 1.25")
	if !strings.HasPrefix(added, "SUCCESS: Product added - Product[ID=") {
		t.Fatalf("ADD_PRODUCT = %q", added)
	}
	var id int
	if _, err := fmt.Sscanf(added, "SUCCESS: Product added - Product[ID=%d,", &id); err != nil {
		t.Fatalf("parse id from %q: %v", added, err)
	}

	bought := command(fmt.Sprintf("BUY_STOCK %d 2", id))
	if !strings.Contains(bought, "SUCCESS: Purchased 2 units of E2EWidget. Total: $2.50. Remaining stock: 5") {
		t.Fatalf("BUY_STOCK = %q", bought)
	}

	report := command("DAILY_REPORT")
	if !strings.Contains(report, "=== END OF REPORT ===") {
		t.Fatalf("DAILY_REPORT incomplete: %q", report)
	}

	removed := command(fmt.Sprintf("REMOVE_PRODUCT %d", id))
	if removed != "SUCCESS: Product removed - E2EWidget" {
		t.Fatalf("REMOVE_PRODUCT = %q", removed)
	}

	send("EXIT")
	if got := readLine(); !strings.HasPrefix(got, "Goodbye") {
		t.Fatalf("EXIT = %q", got)
	}
}
