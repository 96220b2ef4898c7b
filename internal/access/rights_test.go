package access

import "testing"

func TestParseRightsLegacyFormat(t *testing.T) {
	rs := ParseRights("READ | WRITE | DELETE")
	for _, r := range []Right{RightRead, RightWrite, RightDelete} {
		if !rs.Has(r) {
			t.Fatalf("expected %s in %v", r, rs)
		}
	}
	if got := rs.String(); got != "READ | WRITE | DELETE" {
		t.Fatalf("unexpected canonical form: %q", got)
	}
}

func TestParseRightsContainment(t *testing.T) {
	cases := []struct {
		raw  string
		want map[Right]bool
	}{
		{"READ", map[Right]bool{RightRead: true, RightWrite: false, RightDelete: false}},
		{"READ|WRITE", map[Right]bool{RightRead: true, RightWrite: true, RightDelete: false}},
		{"read", map[Right]bool{RightRead: false}},
		{"", map[Right]bool{RightRead: false, RightWrite: false, RightDelete: false}},
		{"garbage DELETE garbage", map[Right]bool{RightDelete: true, RightWrite: false}},
	}
	for _, tc := range cases {
		rs := ParseRights(tc.raw)
		for r, want := range tc.want {
			if rs.Has(r) != want {
				t.Fatalf("ParseRights(%q).Has(%s) = %v, want %v", tc.raw, r, rs.Has(r), want)
			}
		}
	}
}

func TestRightsNilSetDeniesAll(t *testing.T) {
	var rs Rights
	if rs.Has(RightRead) || rs.Has(RightWrite) || rs.Has(RightDelete) {
		t.Fatal("nil rights set must not grant anything")
	}
}

func TestFullRights(t *testing.T) {
	rs := FullRights()
	if len(rs) != 3 {
		t.Fatalf("expected three rights, got %v", rs)
	}
	if got := ParseRights(rs.String()); len(got) != 3 {
		t.Fatalf("canonical form did not round-trip: %q", rs.String())
	}
}
