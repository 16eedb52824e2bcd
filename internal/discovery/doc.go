// Package discovery locates SCC1 bridges.
//
// Two kinds of bridges are found:
//   - local serial ports, through the OS port enumerator
//   - scc1-bridge servers on the network, through mDNS (_scc1._tcp)
//
// # Usage Example
//
//	ports, err := discovery.ListSerialPorts()
//	for _, p := range ports {
//	    fmt.Println(p)
//	}
//
//	bridges, err := discovery.ScanForBridges(5 * time.Second)
//	for _, b := range bridges {
//	    client, err := bridge.Dial(b.URL())
//	    ...
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Bridges must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// Multiple scans can run simultaneously without interference.
package discovery
