// Package wol resolves TV MAC addresses from the system ARP table and
// sends wake-on-lan magic packets, the only way to power on a TV whose
// remote service is down.
package wol

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/samsungtv/internal/logging"
)

// WakePort is the conventional wake-on-lan UDP port.
const WakePort = 9

const arpTablePath = "/proc/net/arp"

// ResolveMAC finds the MAC address for a host via the system ARP table.
// The host must have communicated with this machine recently enough to
// have an ARP entry; probing it first (e.g. the power check) refreshes
// the table.
func ResolveMAC(host string) (string, error) {
	ip, err := resolveIP(host)
	if err != nil {
		return "", err
	}

	if mac, ok := lookupProcARP(ip); ok {
		return mac, nil
	}
	if mac, ok := lookupARPCommand(ip); ok {
		return mac, nil
	}
	return "", fmt.Errorf("wol: no ARP entry for %s (%s)", host, ip)
}

// Wake broadcasts a magic packet for the given MAC address.
func Wake(mac string) error {
	hw, err := net.ParseMAC(mac)
	if err != nil {
		return fmt.Errorf("wol: invalid MAC %q: %w", mac, err)
	}

	packet := magicPacket(hw)
	addr := &net.UDPAddr{IP: net.IPv4bcast, Port: WakePort}
	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		return fmt.Errorf("wol: open broadcast socket: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Write(packet); err != nil {
		return fmt.Errorf("wol: send magic packet: %w", err)
	}

	logging.Info("Magic packet sent", zap.String("mac", hw.String()))
	return nil
}

// magicPacket is six 0xFF bytes followed by the target MAC repeated
// sixteen times.
func magicPacket(hw net.HardwareAddr) []byte {
	packet := make([]byte, 0, 6+16*len(hw))
	packet = append(packet, bytes.Repeat([]byte{0xFF}, 6)...)
	for i := 0; i < 16; i++ {
		packet = append(packet, hw...)
	}
	return packet
}

func resolveIP(host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}
	addrs, err := net.LookupHost(host)
	if err != nil || len(addrs) == 0 {
		return "", fmt.Errorf("wol: resolve %s: %w", host, err)
	}
	return addrs[0], nil
}

// lookupProcARP scans the kernel ARP table. Linux only; other systems
// fall through to the arp command.
func lookupProcARP(ip string) (string, bool) {
	data, err := os.ReadFile(arpTablePath)
	if err != nil {
		return "", false
	}
	return parseARPTable(string(data), ip)
}

func parseARPTable(table, ip string) (string, bool) {
	for _, line := range strings.Split(table, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 || fields[0] != ip {
			continue
		}
		if mac, ok := validMAC(fields[3]); ok {
			return mac, true
		}
	}
	return "", false
}

func lookupARPCommand(ip string) (string, bool) {
	out, err := exec.Command("arp", "-n", ip).Output()
	if err != nil {
		return "", false
	}
	for _, field := range strings.Fields(string(out)) {
		if mac, ok := validMAC(field); ok {
			return mac, true
		}
	}
	return "", false
}

// validMAC accepts a parseable, non-zero hardware address.
func validMAC(s string) (string, bool) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return "", false
	}
	for _, b := range hw {
		if b != 0 {
			return hw.String(), true
		}
	}
	return "", false
}
