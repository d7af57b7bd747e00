package simulator

import "os"

// ShowHelp prints usage information for the bout simulator.
func ShowHelp() {
	os.Stdout.WriteString(`RingCast Bout Simulator
=======================

Sends a scripted taekwondo bout as PSS datagrams to a running RingCast
instance so recording, correlation and the operator API can be exercised
without scoring hardware.

Usage:
  go run cmd/pss-sim/main.go [options]

Options:
  -addr string
        UDP target address (default "127.0.0.1:6000")
  -match string
        Match number for the bout (default "101")
  -phase string
        Tournament phase label (default "finals")
  -rounds int
        Number of rounds (default 3)
  -round-seconds int
        Seconds per round (default 120)
  -delay duration
        Pause between datagrams (default 200ms)
  -verbose
        Log every datagram sent
  -help
        Show this help message

Examples:
  # Simulate a bout against a local instance
  go run cmd/pss-sim/main.go

  # Fast five-round bout against a remote listener
  go run cmd/pss-sim/main.go -addr 10.0.0.5:6000 -rounds 5 -delay 50ms
`)
}
