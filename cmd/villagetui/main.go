// Command villagetui is a terminal client for the village server.
package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"

	"github.com/ashiaomair/06-final-game-charity-water/internal/config"
	"github.com/ashiaomair/06-final-game-charity-water/internal/geom"
	"github.com/ashiaomair/06-final-game-charity-water/internal/net/packet"
	"github.com/ashiaomair/06-final-game-charity-water/internal/world"
)

// Terminals report presses and repeats but never releases. A held arrow
// repeats well inside this window; silence this long counts as a release.
const releaseAfter = 180 * time.Millisecond

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Defaults()
	cfgPath := flag.String("config", "config/village.toml", "server config to read defaults from")
	addr := flag.String("addr", "", "server address (host:port)")
	difficulty := flag.String("difficulty", "", "easy, normal or hard")
	flag.Parse()

	if loaded, err := config.Load(*cfgPath); err == nil {
		cfg = loaded
	}
	if *addr == "" {
		*addr = cfg.Network.BindAddress
	}
	if *difficulty == "" {
		*difficulty = cfg.Village.DefaultDifficulty
	}

	u := url.URL{Scheme: "ws", Host: *addr, Path: cfg.Network.WSPath}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u.String(), err)
	}
	defer conn.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("screen init: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	c := &client{conn: conn, screen: screen, model: newModel()}
	c.send(startPacket(*difficulty))
	return c.loop()
}

type client struct {
	conn   *websocket.Conn
	screen tcell.Screen
	model  *model

	held     world.Direction
	lastKey  time.Time
	building bool   // a build is armed; cleared by Esc or a confirmed placement
	placed   bool   // PLACE sent, waiting for the charge
	picking  bool   // next click picks a structure to move
	moving   uint32 // structure picked up for repositioning
	buttons  tcell.ButtonMask
	err      error
}

func startPacket(answer string) *packet.Writer {
	w := packet.NewWriterWithOpcode(packet.C_OPCODE_START)
	w.WriteS(answer)
	return w
}

func (c *client) send(w *packet.Writer) {
	if c.err != nil {
		return
	}
	c.err = c.conn.WriteMessage(websocket.BinaryMessage, w.Bytes())
}

func (c *client) loop() error {
	inbound := make(chan []byte, 64)
	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			inbound <- data
		}
	}()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go c.screen.ChannelEvents(events, quit)
	defer close(quit)

	frame := time.NewTicker(50 * time.Millisecond)
	defer frame.Stop()

	for {
		select {
		case data := <-inbound:
			c.received(data, time.Now())
		case err := <-readErr:
			return fmt.Errorf("connection closed: %w", err)
		case ev := <-events:
			if c.handle(ev) {
				return nil
			}
		case now := <-frame.C:
			if c.held != world.DirNone && now.Sub(c.lastKey) > releaseAfter {
				c.release()
			}
			c.draw(now)
		}
		if c.err != nil {
			return c.err
		}
	}
}

// received applies a server packet. The server keeps a build armed after a
// rejected click, so the client only leaves build mode once a placement
// has been charged.
func (c *client) received(data []byte, now time.Time) {
	before := c.model.balance
	if err := c.model.apply(data, now); err != nil {
		return
	}
	if c.placed && data[0] == packet.S_OPCODE_BALANCE && c.model.balance < before {
		c.building, c.placed = false, false
	}
}

func (c *client) press(d world.Direction) {
	c.lastKey = time.Now()
	if c.held == d {
		return
	}
	if c.held != world.DirNone {
		c.release()
	}
	c.held = d
	w := packet.NewWriterWithOpcode(packet.C_OPCODE_KEY_DOWN)
	w.WriteC(byte(d))
	c.send(w)
}

func (c *client) release() {
	w := packet.NewWriterWithOpcode(packet.C_OPCODE_KEY_UP)
	w.WriteC(byte(c.held))
	c.send(w)
	c.held = world.DirNone
}

func (c *client) command(opcode byte, name string) {
	w := packet.NewWriterWithOpcode(opcode)
	w.WriteS(name)
	c.send(w)
}

// handle reacts to one terminal event and reports whether to quit.
func (c *client) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		c.screen.Sync()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyCtrlC:
			return true
		case tcell.KeyUp:
			c.press(world.DirUp)
		case tcell.KeyDown:
			c.press(world.DirDown)
		case tcell.KeyLeft:
			c.press(world.DirLeft)
		case tcell.KeyRight:
			c.press(world.DirRight)
		case tcell.KeyEscape:
			c.building, c.placed, c.picking, c.moving = false, false, false, 0
			c.send(packet.NewWriterWithOpcode(packet.C_OPCODE_CANCEL_BUILD))
			c.send(packet.NewWriterWithOpcode(packet.C_OPCODE_CANCEL_SELECTION))
		case tcell.KeyRune:
			return c.rune(ev.Rune())
		}
	case *tcell.EventMouse:
		// Drags report the button on every motion; act on the press only.
		pressed := ev.Buttons()&tcell.Button1 != 0 && c.buttons&tcell.Button1 == 0
		c.buttons = ev.Buttons()
		if pressed {
			x, y := ev.Position()
			c.click(c.toCanvas(x, y))
		}
	}
	return false
}

func (c *client) rune(r rune) bool {
	switch r {
	case 'q':
		return true
	case 'h':
		c.building = true
		c.command(packet.C_OPCODE_BUILD, "house")
	case 'w':
		c.building = true
		c.command(packet.C_OPCODE_BUILD, "wall")
	case 'p':
		c.building = true
		c.command(packet.C_OPCODE_BUILD, "well")
	case 'H':
		c.command(packet.C_OPCODE_UPGRADE, "house")
	case 'W':
		c.command(packet.C_OPCODE_UPGRADE, "wall")
	case 'P':
		c.command(packet.C_OPCODE_UPGRADE, "well")
	case 'r':
		c.send(packet.NewWriterWithOpcode(packet.C_OPCODE_RESET))
	case '1':
		c.send(startPacket("easy"))
	case '2':
		c.send(startPacket("normal"))
	case '3':
		c.send(startPacket("hard"))
	case 'm':
		c.picking = true
	}
	return false
}

func (c *client) click(p geom.Point) {
	switch {
	case c.building:
		c.placed = true
		w := packet.NewWriterWithOpcode(packet.C_OPCODE_PLACE)
		w.WriteD(p.X)
		w.WriteD(p.Y)
		c.send(w)
	case c.picking:
		c.picking = false
		if id, ok := c.model.hit(p); ok {
			c.moving = id
		}
	case c.moving != 0:
		w := packet.NewWriterWithOpcode(packet.C_OPCODE_REPOSITION)
		w.WriteDU(c.moving)
		w.WriteD(p.X)
		w.WriteD(p.Y)
		c.send(w)
		c.moving = 0
	default:
		if id, ok := c.model.hit(p); ok {
			w := packet.NewWriterWithOpcode(packet.C_OPCODE_INTERACT)
			w.WriteDU(id)
			c.send(w)
		}
	}
}
