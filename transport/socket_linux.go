//go:build linux

package transport

import (
	"fmt"
	"net"
	"strconv"

	"golang.org/x/sys/unix"
)

// resolveTCP4 turns a "host:port" address into a 4-byte IPv4 sockaddr. The
// reactor only ever talks IPv4 (spec.md §6's wire protocol has no address-
// family concept of its own to preserve).
func resolveTCP4(addr string) (unix.SockaddrInet4, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return unix.SockaddrInet4{}, fmt.Errorf("transport: invalid address %q: %w", addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return unix.SockaddrInet4{}, fmt.Errorf("transport: invalid port %q: %w", addr, err)
	}

	var ip net.IP
	if host == "" || host == "0.0.0.0" {
		ip = net.IPv4zero
	} else {
		ips, err := net.LookupIP(host)
		if err != nil {
			return unix.SockaddrInet4{}, fmt.Errorf("transport: resolve %q: %w", host, err)
		}
		for _, candidate := range ips {
			if v4 := candidate.To4(); v4 != nil {
				ip = v4
				break
			}
		}
		if ip == nil {
			return unix.SockaddrInet4{}, fmt.Errorf("transport: %q has no IPv4 address", host)
		}
	}

	var sa unix.SockaddrInet4
	sa.Port = port
	copy(sa.Addr[:], ip.To4())
	return sa, nil
}

func addrString(sa unix.SockaddrInet4) string {
	ip := net.IP(sa.Addr[:])
	return net.JoinHostPort(ip.String(), strconv.Itoa(sa.Port))
}

// bindListen creates a non-blocking listening socket bound to addr.
func bindListen(addr string) (int, error) {
	sa, err := resolveTCP4(addr)
	if err != nil {
		return -1, err
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return -1, fmt.Errorf("socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("setsockopt SO_REUSEADDR: %w", err)
	}

	if err := unix.Bind(fd, &sa); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("bind: %w", err)
	}

	const backlog = 128
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("listen: %w", err)
	}

	return fd, nil
}

// acceptNonBlocking accepts a single pending connection from a listening
// fd, returning a non-blocking client fd. Returns unix.EAGAIN when nothing
// is pending.
func acceptNonBlocking(listenFD int) (int, string, error) {
	fd, sa, err := unix.Accept4(listenFD, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		return -1, "", err
	}

	addr := ""
	if inet4, ok := sa.(*unix.SockaddrInet4); ok {
		addr = addrString(*inet4)
	}
	return fd, addr, nil
}

// connectNonBlocking starts a non-blocking TCP connect. connected is true
// if the connection completed synchronously (common for loopback); when
// false, the caller must wait for an EPOLLOUT readiness event and call
// finishConnect.
func connectNonBlocking(addr string) (fd int, connected bool, err error) {
	sa, err := resolveTCP4(addr)
	if err != nil {
		return -1, false, err
	}

	fd, err = unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return -1, false, fmt.Errorf("socket: %w", err)
	}

	err = unix.Connect(fd, &sa)
	if err == nil {
		return fd, true, nil
	}
	if err == unix.EINPROGRESS {
		return fd, false, nil
	}

	unix.Close(fd)
	return -1, false, fmt.Errorf("connect: %w", err)
}

// finishConnect reads SO_ERROR to determine whether an in-progress
// non-blocking connect succeeded once the fd reports writable.
func finishConnect(fd int) error {
	errno, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return fmt.Errorf("getsockopt SO_ERROR: %w", err)
	}
	if errno != 0 {
		return fmt.Errorf("connect failed: %s", unix.Errno(errno).Error())
	}
	return nil
}

// setNoDelay disables Nagle's algorithm; the robot control loop needs
// packets flushed promptly, not batched (spec.md §4.2, §5 latency budget).
func setNoDelay(fd int) {
	unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
}
