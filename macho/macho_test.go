package macho

import "testing"

func TestArch_String(t *testing.T) {
	cases := map[Arch]string{
		ArchAArch64: "arm64",
		ArchX86_64:  "x86_64",
		ArchUnknown: "unknown",
	}
	for arch, want := range cases {
		if got := arch.String(); got != want {
			t.Errorf("Arch(%d).String() = %q, want %q", arch, got, want)
		}
	}
}

func TestErrNoMatchingSlice_Error(t *testing.T) {
	err := &ErrNoMatchingSlice{Requested: ArchAArch64}
	want := "macho: no fat slice matches architecture arm64"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
