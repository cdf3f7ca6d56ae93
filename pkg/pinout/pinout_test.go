package pinout

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/partstack/partstack/pkg/part"
)

func componentData(t *testing.T, shape []string) *ComponentData {
	t.Helper()
	ds, err := json.Marshal(map[string]any{"shape": shape})
	if err != nil {
		t.Fatal(err)
	}
	return &ComponentData{DataStr: ds}
}

func TestParsePinsMOSFET(t *testing.T) {
	data := componentData(t, []string{
		"P~show~0~1~100~100~180~gge1~0^^100~100^^M100,100h10~#880000^^1~110~105~0~G~start~~~#0000FF^^1~100~100~0~1~end~~~#0000FF",
		"P~show~0~2~100~120~180~gge2~0^^100~120^^M100,120h10~#880000^^1~110~125~0~S~start~~~#0000FF^^1~100~120~0~2~end~~~#0000FF",
		"P~show~0~3~100~140~180~gge3~0^^100~140^^M100,140h10~#880000^^1~110~145~0~D~start~~~#0000FF^^1~100~140~0~3~end~~~#0000FF",
	})
	pins := ParsePins(data)
	if len(pins) != 3 {
		t.Fatalf("ParsePins() = %d pins, want 3", len(pins))
	}
	wantNames := []string{"G", "S", "D"}
	for i, p := range pins {
		if p.Number != string(rune('1'+i)) || p.Name != wantNames[i] || p.Type != part.PinIO {
			t.Errorf("pin[%d] = %+v, want number %d name %s type io", i, p, i+1, wantNames[i])
		}
	}
}

func TestParsePinsPassive(t *testing.T) {
	data := componentData(t, []string{
		"P~show~0~1~100~100~180~gge1~0^^100~100^^M100,100h10~#0000FF^^1~110~105~0~1~start~~~#0000FF^^1~100~100~0~1~end~~~#0000FF",
		"P~show~0~2~100~120~180~gge2~0^^100~120^^M100,120h10~#0000FF^^1~110~125~0~2~start~~~#0000FF^^1~100~120~0~2~end~~~#0000FF",
	})
	pins := ParsePins(data)
	if len(pins) != 2 {
		t.Fatalf("ParsePins() = %d pins, want 2", len(pins))
	}
	for i, p := range pins {
		if p.Type != part.PinPassive || p.Name != p.Number {
			t.Errorf("pin[%d] = %+v, want passive with name == number", i, p)
		}
	}
}

func TestParsePinsPowerGroundByName(t *testing.T) {
	data := componentData(t, []string{
		"P~show~0~1~100~100~180~gge1~0^^100~100^^M100,100h10~#FF0000^^1~110~105~0~VDD~start~~~#FF0000^^1~100~100~0~1~end~~~#0000FF",
		"P~show~0~2~100~120~180~gge2~0^^100~120^^M100,120h10~#000000^^1~110~125~0~VSS~start~~~#000000^^1~100~120~0~2~end~~~#0000FF",
	})
	pins := ParsePins(data)
	if len(pins) != 2 {
		t.Fatalf("ParsePins() = %d pins, want 2", len(pins))
	}
	if pins[0].Name != "VDD" || pins[0].Type != part.PinPower {
		t.Errorf("pin[0] = %+v, want VDD power", pins[0])
	}
	if pins[1].Name != "VSS" || pins[1].Type != part.PinGround {
		t.Errorf("pin[1] = %+v, want VSS ground", pins[1])
	}
}

func TestParsePinsSortedByNumber(t *testing.T) {
	data := componentData(t, []string{
		"P~show~0~3~100~100~180~gge1~0^^100~100^^M100,100h10~#0000FF^^1~110~105~0~C~start~~~#0000FF^^1~100~100~0~3~end~~~#0000FF",
		"P~show~0~1~100~100~180~gge2~0^^100~100^^M100,100h10~#0000FF^^1~110~105~0~A~start~~~#0000FF^^1~100~100~0~1~end~~~#0000FF",
		"P~show~0~2~100~100~180~gge3~0^^100~100^^M100,100h10~#0000FF^^1~110~105~0~B~start~~~#0000FF^^1~100~100~0~2~end~~~#0000FF",
	})
	pins := ParsePins(data)
	var numbers, names []string
	for _, p := range pins {
		numbers = append(numbers, p.Number)
		names = append(names, p.Name)
	}
	if !slices.Equal(numbers, []string{"1", "2", "3"}) || !slices.Equal(names, []string{"A", "B", "C"}) {
		t.Errorf("pins sorted as %v / %v, want 1,2,3 / A,B,C", numbers, names)
	}
}

func TestParsePinsStringDataStr(t *testing.T) {
	inner, _ := json.Marshal(map[string]any{"shape": []string{
		"P~show~0~1~100~100~180~gge1~0^^100~100^^M100,100h10~#0000FF^^1~110~105~0~GND~start~~~#0000FF^^1~100~100~0~1~end~~~#0000FF",
	}})
	wrapped, _ := json.Marshal(string(inner))
	pins := ParsePins(&ComponentData{DataStr: wrapped})
	if len(pins) != 1 || pins[0].Type != part.PinGround {
		t.Errorf("ParsePins(string dataStr) = %+v, want one ground pin", pins)
	}
}

func TestParsePinsMalformed(t *testing.T) {
	if pins := ParsePins(nil); pins != nil {
		t.Errorf("ParsePins(nil) = %v, want nil", pins)
	}
	if pins := ParsePins(&ComponentData{DataStr: []byte(`"not json at all"`)}); pins != nil {
		t.Errorf("ParsePins(garbage) = %v, want nil", pins)
	}
	if pins := ParsePins(&ComponentData{DataStr: []byte(`{"shape":[]}`)}); pins != nil {
		t.Errorf("ParsePins(empty shape) = %v, want nil", pins)
	}
}

func TestDetectPinType(t *testing.T) {
	tests := []struct {
		name string
		want part.PinType
	}{
		{"VCC", part.PinPower},
		{"VDD", part.PinPower},
		{"VBAT", part.PinPower},
		{"3V3", part.PinPower},
		{"VBUS", part.PinPower},
		{"GND", part.PinGround},
		{"VSS", part.PinGround}, // ground wins over the VS power substring
		{"AGND", part.PinGround},
		{"PGND", part.PinGround},
		{"1", part.PinPassive},
		{"123", part.PinPassive},
		{"PA0", part.PinIO},
		{"SDA", part.PinIO},
		{"", part.PinIO},
	}
	for _, tt := range tests {
		if got := detectPinType(tt.name); got != tt.want {
			t.Errorf("detectPinType(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestSplitPinFunctions(t *testing.T) {
	tests := []struct {
		raw       string
		wantBase  string
		wantFuncs []string
	}{
		{"G", "G", nil},
		{"VCC", "VCC", nil},
		{"1", "1", nil},
		{"", "", nil},
		{"PC13-TAMPER-RTC", "PC13", []string{"TAMPER", "RTC"}},
		{"PA0_WKUP", "PA0", []string{"WKUP"}},
		{"PA0_WKUPUSART2_CTSADC12_IN0", "PA0", []string{"WKUP", "USART2_CTS", "ADC12_IN0"}},
		{"PA11USART1_CTSCAN_RXTIM1_CH4USBDM", "PA11", []string{"USART1_CTS", "CAN_RX", "TIM1_CH4", "USBDM"}},
	}
	for _, tt := range tests {
		base, funcs := SplitPinFunctions(tt.raw)
		if base != tt.wantBase {
			t.Errorf("SplitPinFunctions(%q) base = %q, want %q", tt.raw, base, tt.wantBase)
		}
		if !slices.Equal(funcs, tt.wantFuncs) {
			t.Errorf("SplitPinFunctions(%q) funcs = %v, want %v", tt.raw, funcs, tt.wantFuncs)
		}
	}
}

func TestGenerateSummaryNilForSimpleParts(t *testing.T) {
	passives := []part.Pin{
		{Number: "1", Name: "1", Type: part.PinPassive},
		{Number: "2", Name: "2", Type: part.PinPassive},
	}
	if s := GenerateSummary(passives); s != nil {
		t.Errorf("GenerateSummary(passives) = %+v, want nil", s)
	}

	simpleIO := []part.Pin{
		{Number: "1", Name: "G", Type: part.PinIO},
		{Number: "2", Name: "S", Type: part.PinIO},
		{Number: "3", Name: "D", Type: part.PinIO},
	}
	if s := GenerateSummary(simpleIO); s != nil {
		t.Errorf("GenerateSummary(simple IO) = %+v, want nil", s)
	}
}

func TestGenerateSummaryPowerGround(t *testing.T) {
	pins := []part.Pin{
		{Number: "1", Name: "VCC", Type: part.PinPower},
		{Number: "2", Name: "GND", Type: part.PinGround},
		{Number: "3", Name: "OUT", Type: part.PinIO},
	}
	s := GenerateSummary(pins)
	if s == nil {
		t.Fatal("GenerateSummary() = nil, want summary")
	}
	if !slices.Contains(s.Power, "VCC") || !slices.Contains(s.Ground, "GND") {
		t.Errorf("summary = %+v, want VCC in power and GND in ground", s)
	}
}

func TestGenerateSummaryInterfaces(t *testing.T) {
	pins := []part.Pin{
		{Number: "1", Name: "VCC", Type: part.PinPower},
		{Number: "2", Name: "PA5", Functions: []string{"SPI1_SCK"}, Type: part.PinIO},
		{Number: "3", Name: "PA6", Functions: []string{"SPI1_MISO"}, Type: part.PinIO},
		{Number: "4", Name: "PA9", Functions: []string{"USART1_TX"}, Type: part.PinIO},
	}
	s := GenerateSummary(pins)
	if s == nil {
		t.Fatal("GenerateSummary() = nil, want summary")
	}
	spi, ok := s.Interfaces["spi"]
	if !ok || spi.Count != 1 || !slices.Contains(spi.Instances, "SPI1") {
		t.Errorf("interfaces[spi] = %+v, want count 1 with SPI1", spi)
	}
	if _, ok := s.Interfaces["usart"]; !ok {
		t.Error("interfaces missing usart")
	}
}

func TestGenerateSummaryBooleanUSB(t *testing.T) {
	pins := []part.Pin{
		{Number: "1", Name: "PA11", Functions: []string{"USBDM"}, Type: part.PinIO},
		{Number: "2", Name: "PA12", Functions: []string{"USBDP"}, Type: part.PinIO},
	}
	s := GenerateSummary(pins)
	if s == nil {
		t.Fatal("GenerateSummary() = nil, want summary")
	}
	usb, ok := s.Interfaces["usb"]
	if !ok || !usb.Present || usb.Count != 0 {
		t.Errorf("interfaces[usb] = %+v, want collapsed boolean", usb)
	}
	if data, err := json.Marshal(usb); err != nil || string(data) != "true" {
		t.Errorf("usb marshals to %s (%v), want true", data, err)
	}
}
