package net

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/mosaicnetworks/regka/src/sched"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

const (
	maxDatagramSize = 65507

	// Delays between retries after a failed socket read.
	baseReadDelay = 5 * time.Millisecond
	maxReadDelay  = time.Second
)

var (
	errNotAdvertisable = errors.New("local bind address is not advertisable")
	errNotUDP          = errors.New("local address is not a UDP address")
)

// UDPTransport implements the Transport interface over UDP sockets. There is
// no broadcast domain on a loopback interface, so a send to BroadcastAddr is
// sent to every address of the peer list instead. Inbound datagrams are
// handed to the handler through the scheduler, so the handler runs on the
// scheduler's goroutine.
type UDPTransport struct {
	sync.RWMutex

	conn      *net.UDPConn
	localAddr string
	peers     []*net.UDPAddr
	handler   Handler

	scheduler sched.Scheduler
	logger    *logrus.Entry

	listenOnce sync.Once
	shutdown   *atomic.Bool
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// FitsDatagram reports whether the largest message of an n-node group, mask
// and matrix plus the padding of a full forward set, fits in one UDP datagram.
func FitsDatagram(n uint32) bool {
	return MinPayloadSize(n)+OverheadBits(int(n))/8 <= maxDatagramSize
}

// NewUDPTransport binds a UDP socket to bindAddr. Port 0 picks a free port;
// LocalAddr returns the bound address.
func NewUDPTransport(bindAddr string, scheduler sched.Scheduler, logger *logrus.Entry) (*UDPTransport, error) {
	addr, err := net.ResolveUDPAddr("udp", bindAddr)
	if err != nil {
		return nil, err
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, err
	}

	local, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		conn.Close()
		return nil, errNotUDP
	}
	if local.IP.IsUnspecified() {
		conn.Close()
		return nil, errNotAdvertisable
	}

	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}

	return &UDPTransport{
		conn:       conn,
		localAddr:  local.String(),
		scheduler:  scheduler,
		logger:     logger.WithField("addr", local.String()),
		shutdown:   atomic.NewBool(false),
		shutdownCh: make(chan struct{}),
	}, nil
}

// SetPeers sets the addresses a broadcast is sent to. The local address is
// skipped.
func (u *UDPTransport) SetPeers(addrs []string) error {
	peers := make([]*net.UDPAddr, 0, len(addrs))
	for _, a := range addrs {
		if a == u.localAddr {
			continue
		}
		addr, err := net.ResolveUDPAddr("udp", a)
		if err != nil {
			return err
		}
		peers = append(peers, addr)
	}

	u.Lock()
	defer u.Unlock()
	u.peers = peers
	return nil
}

// Listen implements the Transport interface. The first call starts reading
// from the socket.
func (u *UDPTransport) Listen(handler Handler) {
	u.Lock()
	u.handler = handler
	u.Unlock()

	u.listenOnce.Do(func() {
		u.wg.Add(1)
		go u.readLoop()
	})
}

// LocalAddr implements the Transport interface.
func (u *UDPTransport) LocalAddr() string {
	return u.localAddr
}

// Send implements the Transport interface.
func (u *UDPTransport) Send(target string, payload []byte) error {
	if u.shutdown.Load() {
		return ErrTransportShutdown
	}

	if target != BroadcastAddr {
		addr, err := net.ResolveUDPAddr("udp", target)
		if err != nil {
			return err
		}
		_, err = u.conn.WriteToUDP(payload, addr)
		return err
	}

	u.RLock()
	peers := u.peers
	u.RUnlock()

	var firstErr error
	for _, p := range peers {
		if _, err := u.conn.WriteToUDP(payload, p); err != nil {
			u.logger.WithError(err).WithField("target", p.String()).Debug("Broadcast write failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (u *UDPTransport) readLoop() {
	defer u.wg.Done()

	buf := make([]byte, maxDatagramSize)
	var loopDelay time.Duration
	for {
		n, from, err := u.conn.ReadFromUDP(buf)
		if err != nil {
			if u.shutdown.Load() {
				return
			}

			if loopDelay == 0 {
				loopDelay = baseReadDelay
			} else {
				loopDelay *= 2
			}
			if loopDelay > maxReadDelay {
				loopDelay = maxReadDelay
			}

			u.logger.WithFields(logrus.Fields{
				"error": err,
				"retry": loopDelay,
			}).Error("Failed to read datagram")

			select {
			case <-u.shutdownCh:
				return
			case <-time.After(loopDelay):
			}
			continue
		}
		loopDelay = 0

		data := make([]byte, n)
		copy(data, buf[:n])
		sender := from.String()

		u.scheduler.ScheduleAfter(0, func() {
			if u.shutdown.Load() {
				return
			}
			u.RLock()
			handler := u.handler
			u.RUnlock()
			if handler != nil {
				handler(data, sender)
			}
		})
	}
}

// Close is used to permanently disable the transport
func (u *UDPTransport) Close() error {
	if !u.shutdown.CompareAndSwap(false, true) {
		return nil
	}
	close(u.shutdownCh)
	err := u.conn.Close()
	u.wg.Wait()
	return err
}
