package printer

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"
)

// Printer sends raw ESC/POS jobs to a receipt printer.
type Printer interface {
	Print(data []byte) error
	IsConnected() bool
	Kind() string
}

// Config selects and addresses the receipt printer.
type Config struct {
	Type    string // "usb", "network" or "none"
	USBPath string // e.g. /dev/usb/lp0
	Address string // e.g. 192.168.1.100:9100
}

// New returns the printer described by cfg.
func New(cfg Config) (Printer, error) {
	switch cfg.Type {
	case "usb":
		if cfg.USBPath == "" {
			return nil, fmt.Errorf("printer: USB path is required for USB printer type")
		}
		return &devicePrinter{path: cfg.USBPath}, nil
	case "network":
		if cfg.Address == "" {
			return nil, fmt.Errorf("printer: address is required for network printer type")
		}
		return &networkPrinter{address: cfg.Address, dialTimeout: 5 * time.Second, writeTimeout: 10 * time.Second}, nil
	case "none", "":
		return Discard(), nil
	default:
		return nil, fmt.Errorf("printer: unknown printer type %q (use usb, network, or none)", cfg.Type)
	}
}

// devicePrinter writes each job to a character device such as /dev/usb/lp0.
type devicePrinter struct {
	mu   sync.Mutex
	path string
}

func (p *devicePrinter) Print(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: open %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.path, err)
	}
	return nil
}

func (p *devicePrinter) IsConnected() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

func (p *devicePrinter) Kind() string { return "usb" }

// networkPrinter dials a raw TCP socket (port 9100) per job.
type networkPrinter struct {
	address      string
	dialTimeout  time.Duration
	writeTimeout time.Duration
}

func (p *networkPrinter) Print(data []byte) error {
	conn, err := net.DialTimeout("tcp", p.address, p.dialTimeout)
	if err != nil {
		return fmt.Errorf("printer: connect %s: %w", p.address, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(p.writeTimeout))
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) IsConnected() bool {
	conn, err := net.DialTimeout("tcp", p.address, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (p *networkPrinter) Kind() string { return "network" }

type discardPrinter struct{}

// Discard returns a printer that drops every job, used when no hardware is
// configured.
func Discard() Printer { return discardPrinter{} }

func (discardPrinter) Print([]byte) error { return nil }
func (discardPrinter) IsConnected() bool  { return false }
func (discardPrinter) Kind() string       { return "none" }

// Spool keeps every job in memory. It backs receipt previews and tests.
type Spool struct {
	mu   sync.Mutex
	jobs [][]byte
}

func (s *Spool) Print(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := make([]byte, len(data))
	copy(job, data)
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Spool) IsConnected() bool { return true }
func (s *Spool) Kind() string      { return "spool" }

// Jobs returns the printed jobs in order.
func (s *Spool) Jobs() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.jobs))
	copy(out, s.jobs)
	return out
}
