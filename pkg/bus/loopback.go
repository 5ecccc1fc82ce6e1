package bus

import "sync"

// Loopback connects one host to one peripheral port in process. Writes
// are delivered to the port synchronously; reads pull from the port's
// response buffer. WriteHook and ReadHook, when set, run before the
// operation and may inject transport faults.
type Loopback struct {
	WriteHook func(data []byte) error
	ReadHook  func(n int) error

	addr byte
	port Port
	mu   sync.Mutex
}

// NewLoopback creates a loopback bus with port attached at addr.
func NewLoopback(addr byte, port Port) *Loopback {
	return &Loopback{addr: addr, port: port}
}

// Write implements Bus.
func (l *Loopback) Write(addr byte, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if addr != l.addr {
		return &Error{Kind: KindNack, Addr: addr}
	}
	if l.WriteHook != nil {
		if err := l.WriteHook(data); err != nil {
			return err
		}
	}
	l.port.HandleWrite(append([]byte(nil), data...))
	return nil
}

// Read implements Bus.
func (l *Loopback) Read(addr byte, n int) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if addr != l.addr {
		return nil, &Error{Kind: KindNack, Addr: addr}
	}
	if l.ReadHook != nil {
		if err := l.ReadHook(n); err != nil {
			return nil, err
		}
	}
	data := l.port.ReadResponse(n)
	if len(data) < n {
		return nil, &Error{Kind: KindShortRead, Addr: addr}
	}
	return data, nil
}
