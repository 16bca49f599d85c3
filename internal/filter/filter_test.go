package filter

import (
	"regexp"
	"testing"
	"time"

	"github.com/shaiso/Plankit/internal/fake"
)

const (
	discoveryClient = "discovery-client-id"
	silverClient    = "silver-client-id"
	goldClient      = "gold-client-id"
	plainClient     = "client_id"
)

// christmasEvening — 25 декабря 2024, 23:15.
func christmasEvening() time.Time {
	return time.Date(2024, time.December, 25, 23, 15, 0, 0, time.Local)
}

func request(object, body, from string) SupportRequest {
	return SupportRequest{Object: object, Body: body, From: from, RequestedAt: christmasEvening()}
}

func TestPackageIssue(t *testing.T) {
	tests := []struct {
		name string
		req  SupportRequest
		want bool
	}{
		{"object containing lost", request("Blah lost blah", "body", plainClient), true},
		{"body containing lost", request("object", "Blah lost blah", plainClient), true},
		{"object containing damaged", request("Blah damaged blah", "body", plainClient), true},
		{"body containing damaged", request("object", "Blah damaged blah", plainClient), true},
		{"case insensitive", request("LOST parcel", "body", plainClient), true},
		{"neither", request("object", "body", plainClient), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PackageIssue(tt.req); got != tt.want {
				t.Errorf("PackageIssue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnderSLA(t *testing.T) {
	tests := []struct {
		name string
		from string
		want bool
	}{
		{"discovery", discoveryClient, false},
		{"silver", silverClient, true},
		{"gold", goldClient, true},
		{"future platinum tier", "platinum-client-id", true},
		{"upper case discovery", "DISCOVERY-client-id", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UnderSLA(request("object", "body", tt.from)); got != tt.want {
				t.Errorf("UnderSLA() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUrgent(t *testing.T) {
	urgent := Urgent(christmasEvening)
	at := func(hour, minute int) time.Time {
		return time.Date(2024, time.December, 25, hour, minute, 0, 0, time.Local)
	}

	tests := []struct {
		name        string
		from        string
		requestedAt time.Time
		want        bool
	}{
		{"gold less than 15 hours old", goldClient, at(8, 16), false},
		{"gold exactly 15 hours old", goldClient, at(8, 15), true},
		{"gold more than 15 hours old", goldClient, at(8, 14), true},
		{"silver more than 15 hours old", silverClient, at(8, 14), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := SupportRequest{Object: "object", Body: "body", From: tt.from, RequestedAt: tt.requestedAt}
			if got := urgent(req); got != tt.want {
				t.Errorf("Urgent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSales(t *testing.T) {
	tests := []struct {
		name string
		req  SupportRequest
		want bool
	}{
		{"object payment from silver", request("payment", "body", silverClient), true},
		{"body payment from silver", request("object", "payment", silverClient), true},
		{"object payment from gold", request("payment", "body", goldClient), true},
		{"body payment from gold", request("object", "payment", goldClient), true},
		{"payment from discovery", request("payment", "payment", discoveryClient), false},
		{"object upgrade from discovery", request("upgrade", "body", discoveryClient), true},
		{"body upgrade from discovery", request("object", "upgrade", discoveryClient), true},
		{"object upgrade spam from discovery", request("upgrade your NFT game", "body", discoveryClient), false},
		{"body upgrade spam from discovery", request("object", "upgrade your NFT game", discoveryClient), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sales(tt.req); got != tt.want {
				t.Errorf("Sales() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCombinators(t *testing.T) {
	req := request("object", "body", plainClient)

	tests := []struct {
		name string
		f    Filter
		want bool
	}{
		{"always", Always, true},
		{"never", Never, false},
		{"and", And(Always, Never), false},
		{"or", Or(Never, Always), true},
		{"not", Not(Never), true},
		{"all empty", All(), true},
		{"all", All(Always, Always, Never), false},
		{"any empty", Any(), false},
		{"any", Any(Never, Never, Always), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f(req); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestAge_Operators(t *testing.T) {
	now := christmasEvening
	req := SupportRequest{RequestedAt: now().Add(-time.Hour)}

	tests := []struct {
		op   Op
		d    time.Duration
		want bool
	}{
		{OpGreater, time.Hour, false},
		{OpGreaterEqual, time.Hour, true},
		{OpLess, time.Hour, false},
		{OpLessEqual, time.Hour, true},
		{OpLess, 2 * time.Hour, true},
		{OpGreater, 30 * time.Minute, true},
	}

	for _, tt := range tests {
		if got := Age(now, tt.op, tt.d)(req); got != tt.want {
			t.Errorf("Age(%s, %s) = %v, want %v", tt.op, tt.d, got, tt.want)
		}
	}
}

func TestParseOp(t *testing.T) {
	for _, s := range []string{">", "<", ">=", "<="} {
		if _, err := ParseOp(s); err != nil {
			t.Errorf("ParseOp(%q) error = %v", s, err)
		}
	}
	if _, err := ParseOp("=="); err == nil {
		t.Error("ParseOp(==) expected error")
	}
}

func TestObjectMatches(t *testing.T) {
	f := ObjectMatches(regexp.MustCompile(`^refund`))
	if !f(request("refund please", "", plainClient)) {
		t.Error("expected match")
	}
	if f(request("please refund", "", plainClient)) {
		t.Error("expected no match")
	}
}

func TestSelectAndTags(t *testing.T) {
	requests := []SupportRequest{
		request("payment issue", "body", goldClient),
		request("hello", "body", discoveryClient),
		request("parcel lost", "body", silverClient),
	}

	got := Select(requests, UnderSLA)
	if len(got) != 2 || got[0].From != goldClient || got[1].From != silverClient {
		t.Errorf("Select() = %+v", got)
	}

	tags := Tags(Presets(christmasEvening), requests[2])
	want := []string{"package-issue", "under-sla"}
	if len(tags) != len(want) {
		t.Fatalf("Tags() = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("Tags()[%d] = %q, want %q", i, tags[i], want[i])
		}
	}
}

func TestFakeRequest(t *testing.T) {
	now := time.Date(2024, 12, 25, 23, 15, 0, 0, time.UTC)
	gen := FakeRequest(now)

	for seed := range uint64(50) {
		r := fake.Run(gen, seed)

		if r.Object == "" || r.Body == "" {
			t.Fatalf("seed %d: empty object or body: %+v", seed, r)
		}
		if !Any(IsTier(TierDiscovery), IsTier(TierSilver), IsTier(TierGold))(r) {
			t.Fatalf("seed %d: unknown tier in %q", seed, r.From)
		}
		if age := now.Sub(r.RequestedAt); age < 0 || age > 48*time.Hour {
			t.Fatalf("seed %d: age %s out of range", seed, age)
		}
	}

	if fake.Run(gen, 7) != fake.Run(gen, 7) {
		t.Error("same seed must give the same request")
	}
}
