package query

import (
	"sort"
	"strings"
)

// SubcategoryAliases maps common shorthand to canonical subcategory
// names (lowercase). The targets must match the distributor's category
// tree exactly.
var SubcategoryAliases = map[string]string{
	// Capacitors
	"capacitor":              "multilayer ceramic capacitors mlcc - smd/smt",
	"capacitors":             "multilayer ceramic capacitors mlcc - smd/smt",
	"cap":                    "multilayer ceramic capacitors mlcc - smd/smt",
	"mlcc":                   "multilayer ceramic capacitors mlcc - smd/smt",
	"smd capacitor":          "multilayer ceramic capacitors mlcc - smd/smt",
	"ceramic capacitor":      "multilayer ceramic capacitors mlcc - smd/smt",
	"smd ceramic capacitor":  "multilayer ceramic capacitors mlcc - smd/smt",
	"electrolytic":           "aluminum electrolytic capacitors - smd",
	"electrolytic capacitor": "aluminum electrolytic capacitors - smd",
	"smd electrolytic":       "aluminum electrolytic capacitors - smd",
	"tantalum":               "tantalum capacitors",
	"tantalum capacitor":     "tantalum capacitors",
	"film capacitor":         "film capacitors",
	"supercap":               "supercapacitors",
	"supercapacitor":         "supercapacitors",
	// Resistors
	"resistor":               "chip resistor - surface mount",
	"resistors":              "chip resistor - surface mount",
	"smd resistor":           "chip resistor - surface mount",
	"chip resistor":          "chip resistor - surface mount",
	"through hole resistor":  "through hole resistors",
	"tht resistor":           "through hole resistors",
	"current sense resistor": "current sense resistors / shunt resistors",
	"shunt resistor":         "current sense resistors / shunt resistors",
	"resistor array":         "resistor networks, arrays",
	"resistor network":       "resistor networks, arrays",
	// Inductors
	"inductor":       "inductors (smd)",
	"inductors":      "inductors (smd)",
	"smd inductor":   "inductors (smd)",
	"power inductor": "inductors (smd)",
	"coil":           "inductors (smd)",
	"ferrite bead":   "ferrite beads",
	"ferrite":        "ferrite beads",
	// Diodes
	"diode":           "switching diodes",
	"diodes":          "switching diodes",
	"schottky":        "schottky diodes",
	"schottky diode":  "schottky diodes",
	"zener":           "zener diodes",
	"zener diode":     "zener diodes",
	"tvs":             "tvs",
	"tvs diode":       "tvs",
	"esd diode":       "tvs",
	"rectifier":       "rectifiers",
	"rectifier diode": "rectifiers",
	// MOSFETs
	"mosfet":           "mosfets",
	"mosfets":          "mosfets",
	"n-channel":        "mosfets",
	"p-channel":        "mosfets",
	"n-channel mosfet": "mosfets",
	"p-channel mosfet": "mosfets",
	"nmos":             "mosfets",
	"pmos":             "mosfets",
	"power mosfet":     "mosfets",
	// BJTs and other transistors
	"bjt":                   "bipolar transistors - bjt",
	"transistor":            "bipolar transistors - bjt",
	"npn":                   "bipolar transistors - bjt",
	"pnp":                   "bipolar transistors - bjt",
	"npn transistor":        "bipolar transistors - bjt",
	"pnp transistor":        "bipolar transistors - bjt",
	"phototransistor":       "phototransistors",
	"photo transistor":      "phototransistors",
	"darlington":            "darlington transistors",
	"darlington transistor": "darlington transistors",
	"jfet":                  "jfets",
	"igbt":                  "igbts",
	// Crystals and oscillators
	"crystal":    "crystals",
	"crystals":   "crystals",
	"xtal":       "crystals",
	"oscillator": "crystal oscillators",
	"tcxo":       "temperature compensated crystal oscillators (tcxo)",
	// Connectors
	"usb connector":    "usb connectors",
	"usb-c":            "usb connectors",
	"usb type-c":       "usb connectors",
	"type-c":           "usb connectors",
	"type-c connector": "usb connectors",
	"pin header":       "pin headers",
	"header":           "pin headers",
	"male header":      "pin headers",
	"female header":    "female headers",
	"socket":           "female headers",
	"jst":              "wire to board / wire to wire connector",
	"terminal block":   "screw terminal/pluggable terminal",
	"screw terminal":   "screw terminal/pluggable terminal",
	// Voltage regulators
	"ldo":               "voltage regulators - linear, low drop out (ldo) regulators",
	"regulator":         "voltage regulators - linear, low drop out (ldo) regulators",
	"linear regulator":  "voltage regulators - linear, low drop out (ldo) regulators",
	"voltage regulator": "voltage regulators - linear, low drop out (ldo) regulators",
	// DC-DC
	"dc-dc":           "dc-dc converters",
	"dc dc":           "dc-dc converters",
	"dc dc converter": "dc-dc converters",
	"dc-dc converter": "dc-dc converters",
	"buck":            "dc-dc converters",
	"buck converter":  "dc-dc converters",
	"boost":           "dc-dc converters",
	"boost converter": "dc-dc converters",
	"buck-boost":      "dc-dc converters",
	// Op amps
	"op amp":                "operational amplifier",
	"opamp":                 "operational amplifier",
	"op-amp":                "operational amplifier",
	"operational amplifier": "operational amplifier",
	// Converters and MCUs
	"adc":             "analog to digital converters (adcs)",
	"dac":             "digital to analog converters (dacs)",
	"mcu":             "microcontroller units (mcus/mpus/socs)",
	"microcontroller": "microcontroller units (mcus/mpus/socs)",
	// LEDs
	"led":             "led indication - discrete",
	"leds":            "led indication - discrete",
	"smd led":         "led indication - discrete",
	"indicator led":   "led indication - discrete",
	"rgb led":         "rgb leds",
	"addressable led": "rgb leds(built-in ic)",
	"ws2812":          "rgb leds(built-in ic)",
	"neopixel":        "rgb leds(built-in ic)",
	"ir led":          "infrared led emitters",
	"infrared led":    "infrared led emitters",
	"uv led":          "ultraviolet leds (uvled)",
	// Switches
	"tactile switch": "tactile switches",
	"tact switch":    "tactile switches",
	"push button":    "tactile switches",
	"pushbutton":     "tactile switches",
	"button":         "tactile switches",
	"dip switch":     "dip switches",
	"toggle switch":  "toggle switches",
	"slide switch":   "slide switches",
	"rocker switch":  "rocker switches",
	// Sensors
	"temperature sensor": "temperature sensors",
	"temp sensor":        "temperature sensors",
	"thermistor":         "ntc thermistors",
	"ntc":                "ntc thermistors",
	"ptc thermistor":     "ptc thermistors - polymer",
	"accelerometer":      "accelerometers",
	"gyroscope":          "gyroscopes",
	"imu":                "accelerometers",
	"hall sensor":        "linear hall sensors",
	"hall effect":        "linear hall sensors",
	"hall effect sensor": "linear hall sensors",
	"current sensor":     "current sensors",
	"magnetic sensor":    "magnetic angle sensors",
	"light sensor":       "ambient light sensors",
	"ambient light":      "ambient light sensors",
	"photodiode":         "photodiodes",
	"photoresistor":      "photoresistors",
	"ldr":                "photoresistors",
	"pressure sensor":    "pressure sensors",
	"humidity sensor":    "humidity sensors",
	"gas sensor":         "gas sensors",
	"proximity sensor":   "proximity sensors",
	"ultrasonic sensor":  "ultrasonic sensors",
	"encoder":            "encoders",
	"rotary encoder":     "encoders",
	// Modules
	"wifi module":      "wifi modules",
	"bluetooth module": "bluetooth modules",
	"ble module":       "bluetooth modules",
	"lora module":      "lora modules",
	"gps module":       "gnss / gps modules",
	"rf module":        "rf modules",
	// Battery management
	"battery charger":    "battery management",
	"battery management": "battery management",
	"lithium charger":    "battery management",
	"li-ion charger":     "battery management",
	"lipo charger":       "battery management",
	"charge controller":  "battery management",
	"bms":                "battery management",
	// Power management
	"power switch": "power distribution switches",
	"load switch":  "power distribution switches",
	"hot swap":     "power distribution switches",
	// Protection
	"esd protection":   "tvs",
	"surge protection": "tvs",
	"esd":              "tvs",
	// Fuses
	"fuse":            "fuses",
	"resettable fuse": "polymeric positive temperature coefficient (pptc) fuses",
	"ptc fuse":        "polymeric positive temperature coefficient (pptc) fuses",
	"polyfuse":        "polymeric positive temperature coefficient (pptc) fuses",
	// Optocouplers
	"optocoupler":  "optocouplers - phototransistor output",
	"optoisolator": "optocouplers - phototransistor output",
	"opto":         "optocouplers - phototransistor output",
	// Motor drivers
	"motor driver":   "motor driver ics",
	"h-bridge":       "motor driver ics",
	"stepper driver": "motor driver ics",
	// Relays
	"relay":             "signal relays",
	"solid state relay": "solid state relays",
	"ssr":               "solid state relays",
	// Timing
	"555 timer":       "timer ics",
	"timer":           "timer ics",
	"rtc":             "real-time clocks (rtc)",
	"real time clock": "real-time clocks (rtc)",
	// Memory
	"eeprom": "eeprom",
	"flash":  "nor flash",
	"sram":   "sram",
	"fram":   "fram",
	// Audio
	"audio amplifier":   "audio power amplifiers",
	"class d":           "audio power amplifiers",
	"class d amplifier": "audio power amplifiers",
	"codec":             "codecs",
	"audio codec":       "codecs",
	"buzzer":            "buzzers",
	"speaker":           "speakers",
	// Interface ICs
	"uart to usb":        "usb to uart",
	"usb uart":           "usb to uart",
	"level shifter":      "level translators / shifters",
	"voltage translator": "level translators / shifters",
	"io expander":        "i/o expanders",
	"gpio expander":      "i/o expanders",
	// Displays
	"oled":          "oled displays modules",
	"lcd":           "lcd display modules",
	"tft":           "tft lcd",
	"7 segment":     "seven-segment displays",
	"seven segment": "seven-segment displays",
}

// ResolveSubcategoryName resolves a subcategory name or alias to its id
// against a map of lowercase subcategory names. Matching priority:
// alias table, exact match, then shortest containing match (ties broken
// lexically so resolution is deterministic). Returns (0, false) when
// nothing matches.
func ResolveSubcategoryName(name string, nameToID map[string]int, aliases map[string]string) (int, bool) {
	if name == "" || len(nameToID) == 0 {
		return 0, false
	}
	if aliases == nil {
		aliases = SubcategoryAliases
	}
	lower := strings.ToLower(name)

	if target, ok := aliases[lower]; ok {
		if id, ok := nameToID[target]; ok {
			return id, true
		}
	}

	if id, ok := nameToID[lower]; ok {
		return id, true
	}

	// Shortest containing name wins: "crystal" resolves to "crystals",
	// not "crystal oscillators".
	type match struct {
		name string
		id   int
	}
	var matches []match
	for n, id := range nameToID {
		if strings.Contains(n, lower) {
			matches = append(matches, match{n, id})
		}
	}
	if len(matches) == 0 {
		return 0, false
	}
	sort.Slice(matches, func(i, j int) bool {
		if len(matches[i].name) != len(matches[j].name) {
			return len(matches[i].name) < len(matches[j].name)
		}
		return matches[i].name < matches[j].name
	})
	return matches[0].id, true
}

// Suggestion is one did-you-mean candidate from FindSimilarSubcategories.
type Suggestion struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// SubcategoryInfo carries the display name and parent category used to
// build suggestions.
type SubcategoryInfo struct {
	Name     string
	Category string
}

// FindSimilarSubcategories returns up to limit subcategories sharing a
// word (3+ chars) with the query, deduplicated by id.
func FindSimilarSubcategories(name string, nameToID map[string]int, info map[int]SubcategoryInfo, limit int) []Suggestion {
	words := strings.Fields(strings.ToLower(name))

	// Stable iteration so suggestions don't shuffle between calls.
	names := make([]string, 0, len(nameToID))
	for n := range nameToID {
		names = append(names, n)
	}
	sort.Strings(names)

	seen := make(map[int]struct{})
	var out []Suggestion
	for _, subName := range names {
		id := nameToID[subName]
		if _, dup := seen[id]; dup {
			continue
		}
		for _, word := range words {
			if len(word) < 3 || !strings.Contains(subName, word) {
				continue
			}
			seen[id] = struct{}{}
			s := Suggestion{ID: id, Name: subName}
			if meta, ok := info[id]; ok {
				s.Name = meta.Name
				s.Category = meta.Category
			}
			out = append(out, s)
			break
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
