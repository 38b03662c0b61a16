package hotkey

// evdev modifier key codes
const (
	codeLeftControl  uint16 = 29
	codeRightControl uint16 = 97
	codeLeftShift    uint16 = 42
	codeRightShift   uint16 = 54
	codeLeftAlt      uint16 = 56
	codeRightAlt     uint16 = 100
	codeSuper        uint16 = 125
)

// KeyCodes maps key names to their evdev codes
var KeyCodes = map[string]uint16{
	// a-z
	"a": 30, "b": 48, "c": 46, "d": 32, "e": 18, "f": 33, "g": 34, "h": 35,
	"i": 23, "j": 36, "k": 37, "l": 38, "m": 50, "n": 49, "o": 24, "p": 25,
	"q": 16, "r": 19, "s": 31, "t": 20, "u": 22, "v": 47, "w": 17, "x": 45,
	"y": 21, "z": 44,
	// 0-9
	"0": 11, "1": 2, "2": 3, "3": 4, "4": 5, "5": 6, "6": 7, "7": 8, "8": 9, "9": 10,
	// Special characters
	"`": 41, "[": 26, "]": 27, "\\": 43, ";": 39, "'": 40, ",": 51, ".": 52, "/": 53, "-": 12, "=": 13,
}

// KeyNames maps evdev codes back to key names
var KeyNames = map[uint16]string{
	// a-z
	30: "a", 48: "b", 46: "c", 32: "d", 18: "e", 33: "f", 34: "g", 35: "h",
	23: "i", 36: "j", 37: "k", 38: "l", 50: "m", 49: "n", 24: "o", 25: "p",
	16: "q", 19: "r", 31: "s", 20: "t", 22: "u", 47: "v", 17: "w", 45: "x",
	21: "y", 44: "z",
	// 0-9
	11: "0", 2: "1", 3: "2", 4: "3", 5: "4", 6: "5", 7: "6", 8: "7", 9: "8", 10: "9",
	// Special characters
	41: "`", 26: "[", 27: "]", 43: "\\", 39: ";", 40: "'", 51: ",", 52: ".", 53: "/", 12: "-", 13: "=",
	57: "space",
	1:  "escape",
}
