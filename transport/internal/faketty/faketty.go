// Package faketty allocates a real PTY pair so transport tests exercise
// the genuine termios/ioctl code path without physical hardware.
package faketty

import (
	"os"

	"github.com/creack/pty"
)

// Pair is a master/slave PTY pair. The slave's path can be handed to
// transport.Port.Open like any other device node; the master plays the
// part of the router, writing scripted prompts and reading commands.
type Pair struct {
	Master *os.File
	Slave  *os.File
}

// New opens a fresh PTY pair.
func New() (*Pair, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, err
	}
	return &Pair{Master: master, Slave: slave}, nil
}

// SlavePath returns the path a transport.Port should Open, e.g.
// "/dev/pts/7".
func (p *Pair) SlavePath() string {
	return p.Slave.Name()
}

// Close releases both ends of the pair.
func (p *Pair) Close() {
	p.Slave.Close()
	p.Master.Close()
}
