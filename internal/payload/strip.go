// Package payload heuristically recognises encapsulated well-known
// upper-layer headers at the front of a frame, the Go-native stand-in for
// the original tool's scapy-based stripper (spec §4.11).
package payload

import (
	"encoding/binary"
	"fmt"

	"github.com/techge/l2pre/internal/wire"
)

const (
	etherTypeIPv4 = 0x0800
	etherTypeIPv6 = 0x86DD
	etherTypeARP  = 0x0806

	ethernetHeaderLen = 14
)

// Strip inspects msg.Data for a recognisable Ethernet II header followed
// by IPv4/IPv6/ARP, or a bare IPv4/IPv6 header at offset 0, and records a
// summary without ever truncating Data itself: the core pipeline always
// infers over the full frame.
func Strip(msg wire.Message) wire.Message {
	if summary, rest, ok := stripEthernet(msg.Data); ok {
		msg.PayloadSummary = summary
		msg.PayloadData = rest
		return msg
	}
	if summary, rest, ok := stripBareIP(msg.Data); ok {
		msg.PayloadSummary = summary
		msg.PayloadData = rest
		return msg
	}
	return msg
}

func stripEthernet(data []byte) (string, []byte, bool) {
	if len(data) < ethernetHeaderLen {
		return "", nil, false
	}
	etherType := binary.BigEndian.Uint16(data[12:14])
	rest := data[ethernetHeaderLen:]

	switch etherType {
	case etherTypeIPv4:
		if summary, ipRest, ok := describeIPv4(rest); ok {
			return "Ethernet+" + summary, ipRest, true
		}
		return "Ethernet+IPv4", rest, true
	case etherTypeIPv6:
		if summary, ipRest, ok := describeIPv6(rest); ok {
			return "Ethernet+" + summary, ipRest, true
		}
		return "Ethernet+IPv6", rest, true
	case etherTypeARP:
		return "Ethernet+ARP", rest, true
	default:
		return "", nil, false
	}
}

func stripBareIP(data []byte) (string, []byte, bool) {
	if summary, rest, ok := describeIPv4(data); ok {
		return summary, rest, true
	}
	if summary, rest, ok := describeIPv6(data); ok {
		return summary, rest, true
	}
	return "", nil, false
}

func describeIPv4(data []byte) (string, []byte, bool) {
	if len(data) < 20 {
		return "", nil, false
	}
	version := data[0] >> 4
	if version != 4 {
		return "", nil, false
	}
	ihl := int(data[0]&0x0f) * 4
	if ihl < 20 || ihl > len(data) {
		return "", nil, false
	}
	proto := data[9]
	return fmt.Sprintf("IPv4/%d", proto), data[ihl:], true
}

func describeIPv6(data []byte) (string, []byte, bool) {
	if len(data) < 40 {
		return "", nil, false
	}
	version := data[0] >> 4
	if version != 6 {
		return "", nil, false
	}
	nextHeader := data[6]
	return fmt.Sprintf("IPv6/%d", nextHeader), data[40:], true
}
