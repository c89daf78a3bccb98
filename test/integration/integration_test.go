//go:build integration

package integration

import (
	"os"
	"testing"

	hexagonrpc "github.com/linux-msm/hexagonrpc"
)

// These tests need a Qualcomm SoC with a FastRPC device node and a
// running DSP firmware; they are skipped everywhere else.

const defaultNode = "/dev/fastrpc-adsp"

func requireDevice(t *testing.T) string {
	node := os.Getenv("HEXAGONRPC_TEST_DEVICE")
	if node == "" {
		node = defaultNode
	}
	if _, err := os.Stat(node); os.IsNotExist(err) {
		t.Skipf("FastRPC device %s not available", node)
	}
	if os.Getuid() != 0 {
		t.Skip("This test requires root privileges")
	}
	return node
}

func TestIntegrationAttach(t *testing.T) {
	node := requireDevice(t)

	channel, err := hexagonrpc.Open(node)
	if err != nil {
		t.Fatalf("open %s: %v", node, err)
	}
	defer channel.Close()

	if err := channel.Attach(); err != nil {
		t.Fatalf("attach: %v", err)
	}
}

func TestIntegrationOpenDefaultListener(t *testing.T) {
	node := requireDevice(t)

	channel, err := hexagonrpc.Open(node)
	if err != nil {
		t.Fatalf("open %s: %v", node, err)
	}
	defer channel.Close()

	if err := channel.Attach(); err != nil {
		t.Fatalf("attach: %v", err)
	}

	handle, err := channel.OpenHandle("adsp_default_listener")
	if err != nil {
		t.Fatalf("remotectl open: %v", err)
	}
	t.Logf("adsp_default_listener handle: %d", handle)

	if err := channel.CloseHandle(handle); err != nil {
		t.Errorf("remotectl close: %v", err)
	}
}

func TestIntegrationOpenUnknownInterface(t *testing.T) {
	node := requireDevice(t)

	channel, err := hexagonrpc.Open(node)
	if err != nil {
		t.Fatalf("open %s: %v", node, err)
	}
	defer channel.Close()

	if err := channel.Attach(); err != nil {
		t.Fatalf("attach: %v", err)
	}

	_, err = channel.OpenHandle("hexagonrpc_no_such_interface")
	if err == nil {
		t.Fatal("opening a bogus interface should fail")
	}
}
