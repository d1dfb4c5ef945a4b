//go:build linux

package wayland

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// Object ids allocated by this client. The display is always 1.
const (
	objDisplay uint32 = iota + 1
	objRegistry
	objGlobalsDone
	objSeat
	objManager
	objSource
	objDevice
	objSelectionDone
)

// Request opcodes.
const (
	displaySync             uint16 = 0
	displayGetRegistry      uint16 = 1
	registryBind            uint16 = 0
	managerCreateDataSource uint16 = 0
	managerGetDataDevice    uint16 = 1
	sourceOffer             uint16 = 0
	deviceSetSelection      uint16 = 0
)

// Event opcodes.
const (
	registryGlobal  uint16 = 0
	callbackDone    uint16 = 0
	sourceSend      uint16 = 0
	sourceCancelled uint16 = 1
)

const (
	ifaceSeat    = "wl_seat"
	ifaceManager = "zwlr_data_control_manager_v1"
)

// Offer is one representation of the selection.
type Offer struct {
	MIME string
	Data []byte
}

// SocketPath returns the compositor socket from XDG_RUNTIME_DIR and
// WAYLAND_DISPLAY.
func SocketPath() (string, error) {
	display := os.Getenv("WAYLAND_DISPLAY")
	if display == "" {
		return "", fmt.Errorf("wayland: WAYLAND_DISPLAY not set")
	}
	if filepath.IsAbs(display) {
		return display, nil
	}
	runtime := os.Getenv("XDG_RUNTIME_DIR")
	if runtime == "" {
		return "", fmt.Errorf("wayland: XDG_RUNTIME_DIR not set")
	}
	return filepath.Join(runtime, display), nil
}

type globals struct {
	seat, manager       uint32
	hasSeat, hasManager bool
}

// Serve takes ownership of the selection with every offer registered on a
// single data source, so a paste sees all representations or none. ready is
// called once the compositor has acknowledged the selection. Serve then
// answers paste requests until another client replaces the selection.
func Serve(offers []Offer, ready func()) error {
	if len(offers) == 0 {
		return fmt.Errorf("wayland: nothing to offer")
	}
	path, err := SocketPath()
	if err != nil {
		return err
	}
	c, err := dial(path)
	if err != nil {
		return fmt.Errorf("wayland: connect %s: %w", path, err)
	}
	defer c.close()

	g, err := discover(c)
	if err != nil {
		return err
	}
	if err := claim(c, g, offers); err != nil {
		return err
	}
	if ready != nil {
		ready()
	}
	return answer(c, offers)
}

// discover lists the registry until the first sync round trip completes.
func discover(c *conn) (globals, error) {
	var g globals
	if err := c.request(objDisplay, displayGetRegistry, uint32Arg(objRegistry)); err != nil {
		return g, err
	}
	if err := c.request(objDisplay, displaySync, uint32Arg(objGlobalsDone)); err != nil {
		return g, err
	}

	for {
		ev, err := c.next()
		if err != nil {
			return g, err
		}
		discard(ev)

		if ev.object == objGlobalsDone && ev.opcode == callbackDone {
			break
		}
		if ev.object != objRegistry || ev.opcode != registryGlobal || len(ev.payload) < 4 {
			continue
		}
		name := le.Uint32(ev.payload)
		iface, _, err := readString(ev.payload[4:])
		if err != nil {
			continue
		}
		switch iface {
		case ifaceSeat:
			g.seat, g.hasSeat = name, true
		case ifaceManager:
			g.manager, g.hasManager = name, true
		}
	}

	if !g.hasSeat {
		return g, fmt.Errorf("wayland: no %s global", ifaceSeat)
	}
	if !g.hasManager {
		return g, fmt.Errorf("wayland: compositor does not support %s", ifaceManager)
	}
	return g, nil
}

// claim binds the globals, creates the source, offers every MIME type and
// sets the selection, then waits for the compositor to process it all.
func claim(c *conn, g globals, offers []Offer) error {
	type step struct {
		object uint32
		opcode uint16
		args   [][]byte
	}

	steps := []step{
		{objRegistry, registryBind, [][]byte{uint32Arg(g.seat), stringArg(ifaceSeat), uint32Arg(1), uint32Arg(objSeat)}},
		{objRegistry, registryBind, [][]byte{uint32Arg(g.manager), stringArg(ifaceManager), uint32Arg(2), uint32Arg(objManager)}},
		{objManager, managerCreateDataSource, [][]byte{uint32Arg(objSource)}},
	}
	for _, o := range offers {
		steps = append(steps, step{objSource, sourceOffer, [][]byte{stringArg(o.MIME)}})
	}
	steps = append(steps,
		step{objManager, managerGetDataDevice, [][]byte{uint32Arg(objDevice), uint32Arg(objSeat)}},
		step{objDevice, deviceSetSelection, [][]byte{uint32Arg(objSource)}},
		step{objDisplay, displaySync, [][]byte{uint32Arg(objSelectionDone)}},
	)

	for _, s := range steps {
		if err := c.request(s.object, s.opcode, s.args...); err != nil {
			return err
		}
	}

	for {
		ev, err := c.next()
		if err != nil {
			return err
		}
		discard(ev)
		if ev.object == objSource && ev.opcode == sourceCancelled {
			return fmt.Errorf("wayland: selection rejected by compositor")
		}
		if ev.object == objSelectionDone && ev.opcode == callbackDone {
			return nil
		}
	}
}

// answer writes the requested representation to each fd the compositor
// hands over.
func answer(c *conn, offers []Offer) error {
	byMIME := make(map[string][]byte, len(offers))
	for _, o := range offers {
		byMIME[o.MIME] = o.Data
	}

	for {
		ev, err := c.next()
		if err != nil {
			// compositor went away
			return nil
		}
		if ev.object != objSource {
			discard(ev)
			continue
		}

		switch ev.opcode {
		case sourceSend:
			if ev.fd < 0 {
				continue
			}
			mime, _, _ := readString(ev.payload)
			if data, ok := byMIME[mime]; ok {
				writeFull(ev.fd, data) //nolint:errcheck
			}
			syscall.Close(ev.fd) //nolint:errcheck
		case sourceCancelled:
			discard(ev)
			return nil
		default:
			discard(ev)
		}
	}
}

func discard(ev event) {
	if ev.fd >= 0 {
		syscall.Close(ev.fd) //nolint:errcheck
	}
}
