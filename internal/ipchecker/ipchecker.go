// Package ipchecker extracts and validates client IP addresses from HTTP
// requests, checking whether the caller belongs to a trusted subnet.
// It guards the internal stats endpoint.
package ipchecker

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// IPChecker validates whether a request's client IP belongs
// to the configured trusted subnet.
type IPChecker struct {
	trustedSubnet *net.IPNet
}

// New creates an IPChecker for the given subnet in CIDR notation
// (e.g. "192.168.1.0/24"). An empty string leaves the checker disabled:
// IsTrustedSubnetEmpty reports true and Check rejects everything.
func New(trustedSubnet string) (*IPChecker, error) {
	if trustedSubnet == "" {
		return &IPChecker{
			trustedSubnet: nil,
		}, nil
	}
	_, allowedNet, err := net.ParseCIDR(trustedSubnet)
	if err != nil {
		return nil, fmt.Errorf("error while `net.ParseCIDR()` calling: %w", err)
	}
	return &IPChecker{
		trustedSubnet: allowedNet,
	}, nil
}

// Check verifies whether the given IP address belongs to the configured
// trusted subnet. Without a configured subnet it returns false.
func (checker *IPChecker) Check(clientIP net.IP) bool {
	return checker.trustedSubnet != nil && checker.trustedSubnet.Contains(clientIP)
}

// GetClientIP extracts the client's IP address from an HTTP request,
// checking in order: the "X-Real-IP" header, the "X-Forwarded-For" header
// and finally the request's RemoteAddr field.
func (checker *IPChecker) GetClientIP(request *http.Request) (net.IP, error) {
	ipStr := request.Header.Get("X-Real-IP")
	ip := net.ParseIP(ipStr)
	if ip != nil {
		return ip, nil
	}
	if xff := request.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		ip := strings.TrimSpace(ips[0])
		return net.ParseIP(ip), nil
	}
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return nil, fmt.Errorf("error while `net.SplitHostPort()` calling: %w", err)
	}
	return net.ParseIP(host), nil
}

// IsTrustedSubnetEmpty reports whether the checker was initialized
// without a trusted subnet.
func (checker *IPChecker) IsTrustedSubnetEmpty() bool {
	return checker.trustedSubnet == nil
}
