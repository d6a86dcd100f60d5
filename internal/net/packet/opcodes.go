package packet

// Client → server opcodes.
const (
	C_OPCODE_START            byte = 1  // s difficulty
	C_OPCODE_KEY_DOWN         byte = 2  // c direction
	C_OPCODE_KEY_UP           byte = 3  // c direction
	C_OPCODE_BUILD            byte = 4  // s kind
	C_OPCODE_PLACE            byte = 5  // d x, d y
	C_OPCODE_CANCEL_BUILD     byte = 6  //
	C_OPCODE_UPGRADE          byte = 7  // s kind
	C_OPCODE_INTERACT         byte = 8  // d wire id
	C_OPCODE_REPOSITION       byte = 9  // d wire id, d x, d y
	C_OPCODE_RESET            byte = 10 //
	C_OPCODE_CANCEL_SELECTION byte = 11 //
)

// Server → client opcodes.
const (
	S_OPCODE_WELCOME      byte = 64 // canvas, river, bridge, cell size, catalog
	S_OPCODE_FEEDBACK     byte = 65 // s text, h ttl ms
	S_OPCODE_BALANCE      byte = 66 // d balance
	S_OPCODE_VIEW_DELTA   byte = 67 // h added, entries; h changed, entries; h removed, ids
	S_OPCODE_ACTOR_POS    byte = 68 // d wire id, d x, d y
	S_OPCODE_TREES        byte = 69 // h count, (d id, d x, d y, h size)...
	S_OPCODE_COLLECTIBLES byte = 70 // h count, (d id, d x, d y, h size)...
	S_OPCODE_SELECTION    byte = 71 // h count, d ids...
	S_OPCODE_WIN          byte = 72 // d balance
	S_OPCODE_STARTED      byte = 73 // s difficulty
)
