package domain

import "testing"

func TestKindForDevice(t *testing.T) {
	cases := []struct {
		name string
		want DeviceKind
	}{
		{"Washing Machine", KindWashingMachine},
		{"washing machine", KindWashingMachine},
		{"Basement Washer", KindWashingMachine},
		{"Living Room AC", KindAC},
		{"AC", KindAC},
		{"Air Conditioner", KindAC},
		{"Kitchen Fridge", KindFridge},
		{"Refrigerator", KindFridge},
		{"Bedroom Television", KindTelevision},
		{"Office TV", KindTelevision},
		{"Hallway Light", KindLight},
		{"Desk Lamp", KindLight},
		{"Ceiling Fan", KindFan},
		// "machine" contains "ac" as a substring but not as a word.
		{"Espresso Machine", KindOther},
		{"Toaster", KindOther},
		{"", KindOther},
	}

	for _, tc := range cases {
		if got := KindForDevice(tc.name); got != tc.want {
			t.Errorf("KindForDevice(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestKindForDevice_ProfileEnvelope(t *testing.T) {
	// A washer must grade against its own envelope, not the AC one.
	profile := ProfileForKind(KindForDevice("Washing Machine"))

	if profile.Kind != KindWashingMachine {
		t.Fatalf("expected washing machine profile, got %v", profile.Kind)
	}
	if profile.MinPowerW != 300 || profile.MaxPowerW != 800 {
		t.Errorf("unexpected envelope: %v-%v W", profile.MinPowerW, profile.MaxPowerW)
	}
}
