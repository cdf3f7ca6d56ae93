// Package pinout decodes EasyEDA symbol shape strings into typed pin
// records and derives an interface summary for complex components.
//
// Pin typing is keyword-based on the pin name only. Symbol stroke
// colors (red for power, black for ground in some libraries) are
// ignored: they are inconsistently applied across user-contributed
// symbols, so a red-colored pin with a non-power name classifies by
// its name.
package pinout

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/partstack/partstack/pkg/part"
)

// Ground keywords are checked before power keywords so names like VSS
// are not misread as the VS power rail.
var (
	powerKeywords  = []string{"VCC", "VDD", "VBAT", "3V3", "5V", "3.3V", "VBUS", "VIN", "VOUT", "V+", "AVCC", "DVCC"}
	groundKeywords = []string{"GND", "VSS", "AGND", "DGND", "VEE", "V-", "EP", "PGND"}
)

var peripheralPrefixes = []string{
	"USART", "UART", "SPI", "I2C", "ADC", "DAC", "TIM", "CAN",
	"USB", "COMP", "OPAMP", "WKUP", "JTAG", "SWD", "ETH", "SDIO",
	"FSMC", "RTC", "MCO", "TRACECLK", "TAMPER", "OSC", "BOOT",
}

var (
	startLabelPattern   = regexp.MustCompile(`~([^~]+)~start~~~`)
	endLabelPattern     = regexp.MustCompile(`~([^~]+)~end~~~`)
	gpioUnderscorePat   = regexp.MustCompile(`^(P[A-K]\d+)_(.+)$`)
	gpioNoUnderscorePat = regexp.MustCompile(`^(P[A-K]\d+)([A-Z].*)$`)
	peripheralPattern   = regexp.MustCompile(strings.Join(peripheralPrefixes, "|"))
)

// Interface detection patterns for the summary. Capture group 1, when
// non-empty, is the instance number.
var interfacePatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"i2c", regexp.MustCompile(`I2C(\d*)`)},
	{"spi", regexp.MustCompile(`SPI(\d*)`)},
	{"usart", regexp.MustCompile(`USART(\d*)`)},
	{"uart", regexp.MustCompile(`UART(\d*)`)},
	{"can", regexp.MustCompile(`CAN(\d*)`)},
	{"usb", regexp.MustCompile(`USB`)},
	{"adc", regexp.MustCompile(`ADC\d*_IN(\d+)`)},
	{"dac", regexp.MustCompile(`DAC(\d*)`)},
	{"timer", regexp.MustCompile(`TIM(\d+)`)},
	{"eth", regexp.MustCompile(`ETH`)},
	{"sdio", regexp.MustCompile(`SDIO`)},
	{"i2s", regexp.MustCompile(`I2S(\d*)`)},
}

// booleanInterfaces collapse to a bare true when exactly one instance
// is present.
var booleanInterfaces = map[string]struct{}{"usb": {}, "eth": {}, "sdio": {}}

// ComponentData is the relevant slice of an EasyEDA component payload.
// DataStr arrives either as a JSON string or an already-decoded object.
type ComponentData struct {
	DataStr json.RawMessage `json:"dataStr"`
}

type dataStr struct {
	Shape []json.RawMessage `json:"shape"`
}

// ParsePins decodes the pin-bearing shape elements of an EasyEDA
// component payload. Parsing is best-effort: malformed or absent shape
// data yields an empty list, never an error.
func ParsePins(data *ComponentData) []part.Pin {
	if data == nil || len(data.DataStr) == 0 {
		return nil
	}

	raw := data.DataStr
	// dataStr may be a JSON-encoded string wrapping the real object.
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		raw = []byte(asString)
	}

	var ds dataStr
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil
	}
	if len(ds.Shape) == 0 {
		return nil
	}

	var pins []part.Pin
	for _, rawElem := range ds.Shape {
		var element string
		if err := json.Unmarshal(rawElem, &element); err != nil {
			continue
		}
		if !strings.HasPrefix(element, "P~") {
			continue
		}
		pins = append(pins, parsePinElement(element))
	}

	sort.SliceStable(pins, func(i, j int) bool {
		return lessPinNumber(pins[i].Number, pins[j].Number)
	})
	return pins
}

// Pin format varies by orientation: left-side pins carry the name in
// the start label and the number in the end label, right-side pins the
// reverse. The non-numeric label is the name.
func parsePinElement(element string) part.Pin {
	fields := strings.Split(element, "~")
	var pinNum string
	if len(fields) > 3 {
		pinNum = fields[3]
	}

	var startLabel, endLabel string
	if m := startLabelPattern.FindStringSubmatch(element); m != nil {
		startLabel = m[1]
	}
	if m := endLabelPattern.FindStringSubmatch(element); m != nil {
		endLabel = m[1]
	}

	name := pinNum // passive fallback
	switch {
	case startLabel != "" && !isDigits(startLabel):
		name = startLabel
	case endLabel != "" && !isDigits(endLabel):
		name = endLabel
	}

	base, functions := SplitPinFunctions(name)
	return part.Pin{
		Number:    pinNum,
		Name:      base,
		Functions: functions,
		Type:      detectPinType(name),
	}
}

// detectPinType classifies a pin by its name keywords, ground before
// power. Symbol colors are not trusted: EasyEDA reuses the same colors
// across unrelated pin types.
func detectPinType(name string) part.PinType {
	upper := strings.ToUpper(name)
	for _, kw := range groundKeywords {
		if strings.Contains(upper, kw) {
			return part.PinGround
		}
	}
	for _, kw := range powerKeywords {
		if strings.Contains(upper, kw) {
			return part.PinPower
		}
	}
	if name != "" && isDigits(name) {
		return part.PinPassive
	}
	return part.PinIO
}

// SplitPinFunctions splits an MCU pin name into its base identifier and
// alternate functions:
//
//	"PC13-TAMPER-RTC"            -> ("PC13", ["TAMPER", "RTC"])
//	"PA0_WKUPUSART2_CTSADC12_IN0" -> ("PA0", ["WKUP", "USART2_CTS", "ADC12_IN0"])
func SplitPinFunctions(rawName string) (string, []string) {
	if rawName == "" {
		return "", nil
	}

	if strings.Contains(rawName, "-") {
		segments := strings.Split(rawName, "-")
		return segments[0], segments[1:]
	}

	if m := gpioUnderscorePat.FindStringSubmatch(rawName); m != nil {
		return m[1], splitConcatenatedFunctions(m[2])
	}
	if m := gpioNoUnderscorePat.FindStringSubmatch(rawName); m != nil {
		return m[1], splitConcatenatedFunctions(m[2])
	}

	return rawName, nil
}

// splitConcatenatedFunctions segments a delimiter-free multi-function
// label by scanning for known peripheral prefixes. Text before the
// first prefix is a standalone function; text between prefixes trails
// the function it follows.
func splitConcatenatedFunctions(remainder string) []string {
	if remainder == "" {
		return nil
	}

	var functions []string
	lastEnd := 0
	for _, loc := range peripheralPattern.FindAllStringIndex(remainder, -1) {
		start, end := loc[0], loc[1]
		if start > lastEnd {
			if len(functions) > 0 {
				functions[len(functions)-1] += remainder[lastEnd:start]
			} else {
				functions = append(functions, remainder[lastEnd:start])
			}
		}
		functions = append(functions, remainder[start:end])
		lastEnd = end
	}

	if lastEnd < len(remainder) {
		if len(functions) > 0 {
			functions[len(functions)-1] += remainder[lastEnd:]
		} else {
			functions = []string{remainder}
		}
	}
	return functions
}

// Numeric pin numbers sort ascending; non-numeric numbers sort after
// all numeric ones, lexically among themselves.
func lessPinNumber(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	default:
		return a < b
	}
}

// GenerateSummary derives the power/ground/interface overview from
// parsed pins. Returns nil for simple components with neither power
// pins nor detected interfaces.
func GenerateSummary(pins []part.Pin) *part.PinoutSummary {
	var power, ground []string
	for _, p := range pins {
		switch p.Type {
		case part.PinPower:
			power = append(power, p.Name)
		case part.PinGround:
			ground = append(ground, p.Name)
		}
	}

	instanceSets := make(map[string]map[string]struct{})
	for _, p := range pins {
		for _, fn := range p.Functions {
			for _, ip := range interfacePatterns {
				m := ip.pattern.FindStringSubmatch(fn)
				if m == nil {
					continue
				}
				set := instanceSets[ip.name]
				if set == nil {
					set = make(map[string]struct{})
					instanceSets[ip.name] = set
				}
				label := strings.ToUpper(ip.name)
				if len(m) > 1 && m[1] != "" {
					label += m[1]
				}
				set[label] = struct{}{}
			}
		}
	}

	interfaces := make(map[string]part.InterfaceInfo, len(instanceSets))
	for name, set := range instanceSets {
		instances := make([]string, 0, len(set))
		for inst := range set {
			instances = append(instances, inst)
		}
		sort.Strings(instances)
		if _, boolean := booleanInterfaces[name]; boolean && len(instances) == 1 {
			interfaces[name] = part.InterfaceInfo{Present: true}
		} else {
			interfaces[name] = part.InterfaceInfo{Count: len(instances), Instances: instances}
		}
	}

	if len(interfaces) == 0 && len(power) == 0 {
		return nil
	}

	summary := &part.PinoutSummary{Power: power, Ground: ground}
	if len(interfaces) > 0 {
		summary.Interfaces = interfaces
	}
	return summary
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
