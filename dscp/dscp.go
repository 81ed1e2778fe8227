// Package dscp provides the DSCP name-to-TOS lookup table and the
// socket option used to mark outgoing packets with a DSCP codepoint.
package dscp

import (
	"fmt"
	"net"
	"sort"

	"golang.org/x/sys/unix"
)

// Enable sets the IP_TOS (or IPV6_TCLASS) socket option to dscp<<2 on
// fd, the socket family chosen by whether localAddr is an IPv4 address.
func Enable(fd int, localAddr net.IP, dscp int) error {
	if localAddr.To4() == nil {
		return unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_TCLASS, dscp<<2)
	}
	return unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_TOS, dscp<<2)
}

// table is the standard 64-entry DSCP codepoint table: the well-known
// names (best-effort, class-selector, assured-forwarding, expedited
// forwarding, network control) plus a cpNN fallback for every other
// codepoint, as recovered from the original tool's dscpmap.
var table = buildTable()

func buildTable() map[string]uint8 {
	t := make(map[string]uint8, 64)
	t["be"] = 0
	for i := 1; i <= 5; i++ {
		t[fmt.Sprintf("cs%d", i)] = uint8(i * 8)
	}
	t["nc1"] = 48
	t["nc2"] = 56
	t["ef"] = 46
	af := map[string]uint8{
		"af11": 10, "af12": 12, "af13": 14,
		"af21": 18, "af22": 20, "af23": 22,
		"af31": 26, "af32": 28, "af33": 30,
		"af41": 34, "af42": 36, "af43": 38,
	}
	for name, code := range af {
		t[name] = code
	}
	for code := uint8(0); code < 64; code++ {
		used := false
		for _, v := range t {
			if v == code {
				used = true
				break
			}
		}
		if !used {
			t[fmt.Sprintf("cp%d", code)] = code
		}
	}
	return t
}

// Lookup returns the 6-bit DSCP codepoint for a name from the standard
// table. name is case-sensitive and matches the original tool's
// lower-case convention (be, cs1..cs5, nc1, nc2, ef, af11..af43, cpN).
func Lookup(name string) (uint8, error) {
	code, ok := table[name]
	if !ok {
		return 0, fmt.Errorf("dscp: unknown name %q", name)
	}
	return code, nil
}

// Entry is one row of the rendered DSCP table.
type Entry struct {
	Name string
	Code uint8
	TOS  uint8
}

// Entries returns the full table sorted by codepoint, for rendering.
func Entries() []Entry {
	entries := make([]Entry, 0, len(table))
	for name, code := range table {
		entries = append(entries, Entry{Name: name, Code: code, TOS: code << 2})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Code != entries[j].Code {
			return entries[i].Code < entries[j].Code
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}
