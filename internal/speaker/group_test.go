package speaker

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/soundmesh/wam/internal/event"
	"github.com/soundmesh/wam/internal/wamtest"
)

func hosts(speakers []*Speaker) []string {
	var out []string
	for _, sp := range speakers {
		out = append(out, sp.Host())
	}
	return out
}

func sameHosts(a []*Speaker, want []string) bool {
	got := hosts(a)
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestPlanGroupChange(t *testing.T) {
	a := New("10.0.0.1")
	b := New("10.0.0.2")
	c := New("10.0.0.3")
	for _, sp := range []*Speaker{a, b, c} {
		t.Cleanup(sp.Close)
	}

	tests := []struct {
		name        string
		current     []*Speaker
		desired     []*Speaker
		wantRemove  []string
		wantAdd     []string
		wantDissolv bool
		wantEmpty   bool
	}{
		{
			name:      "nothing to nothing",
			wantEmpty: true,
		},
		{
			name:    "form new group",
			desired: []*Speaker{b},
			wantAdd: []string{"10.0.0.2"},
		},
		{
			name:    "grow group resends full membership",
			current: []*Speaker{b},
			desired: []*Speaker{b, c},
			wantAdd: []string{"10.0.0.2", "10.0.0.3"},
		},
		{
			name:       "shrink group removes then reforms",
			current:    []*Speaker{b, c},
			desired:    []*Speaker{b},
			wantRemove: []string{"10.0.0.3"},
			wantAdd:    []string{"10.0.0.2"},
		},
		{
			name:        "dissolve",
			current:     []*Speaker{b, c},
			desired:     nil,
			wantRemove:  []string{"10.0.0.2", "10.0.0.3"},
			wantDissolv: true,
		},
		{
			name:      "unchanged membership",
			current:   []*Speaker{b, c},
			desired:   []*Speaker{c, b},
			wantEmpty: true,
		},
		{
			name:       "swap member",
			current:    []*Speaker{b},
			desired:    []*Speaker{c},
			wantRemove: []string{"10.0.0.2"},
			wantAdd:    []string{"10.0.0.3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanGroupChange(tt.current, tt.desired)

			if plan.Empty() != tt.wantEmpty {
				t.Fatalf("Empty() = %t, want %t (plan %+v)", plan.Empty(), tt.wantEmpty, plan)
			}
			if !sameHosts(plan.Remove, tt.wantRemove) {
				t.Errorf("Remove = %v, want %v", hosts(plan.Remove), tt.wantRemove)
			}
			if !sameHosts(plan.Add, tt.wantAdd) {
				t.Errorf("Add = %v, want %v", hosts(plan.Add), tt.wantAdd)
			}
			if plan.Dissolve != tt.wantDissolv {
				t.Errorf("Dissolve = %t, want %t", plan.Dissolve, tt.wantDissolv)
			}
		})
	}
}

// fakePair wires a speaker client to its own fake server with identity
// responses scripted.
func fakePair(t *testing.T, mac, name string) (*wamtest.Server, *Speaker) {
	t.Helper()
	srv := wamtest.NewServer(t)
	srv.Handle("GetMainInfo", func(req wamtest.Request) []string {
		return []string{wamtest.OKBody("MainInfo", req.User,
			"<spkmacaddr>"+mac+"</spkmacaddr><spkmodelname>WAM1500</spkmodelname>"+
				"<grouptype>N</grouptype>")}
	})
	srv.Handle("SetMultispkGroup", func(req wamtest.Request) []string {
		return []string{wamtest.OKBody("MultispkGroup", req.User,
			"<groupname><![CDATA["+name+"]]></groupname><spknum>2</spknum>")}
	})
	srv.Handle("SetUngroup", func(req wamtest.Request) []string {
		return []string{wamtest.OKBody("Ungroup", req.User, "")}
	})

	sp := newTestSpeaker(t, srv)
	connect(t, sp)
	return srv, sp
}

func TestCreateGroup(t *testing.T) {
	masterSrv, master := fakePair(t, "aa:aa", "Living Room")
	memberSrv, member := fakePair(t, "bb:bb", "Kitchen")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := master.CreateGroup(ctx, "Downstairs", []*Speaker{member}); err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	masterCmds := masterSrv.RequestsFor("SetMultispkGroup")
	if len(masterCmds) != 1 {
		t.Fatalf("master received %d SetMultispkGroup commands, want 1", len(masterCmds))
	}
	payload := masterCmds[0].Payload
	for _, frag := range []string{
		`val="main"`,
		`val="2"`, // spknum: master plus one member
		member.Host(),
		"bb:bb",
		"Downstairs",
	} {
		if !strings.Contains(payload, frag) {
			t.Errorf("master payload missing %q:\n%s", frag, payload)
		}
	}

	// The member-side command has no reply, so wait for it to arrive.
	waitFor(t, func() bool { return len(memberSrv.RequestsFor("SetMultispkGroup")) == 1 })
	memberCmds := memberSrv.RequestsFor("SetMultispkGroup")
	if !strings.Contains(memberCmds[0].Payload, `val="sub"`) {
		t.Errorf("member payload = %q, want sub role", memberCmds[0].Payload)
	}
	if !strings.Contains(memberCmds[0].Payload, "aa:aa") {
		t.Errorf("member payload = %q, want master MAC", memberCmds[0].Payload)
	}

	// The master's reply marked it group master.
	if got := master.State().Group.Role; got != event.GroupRoleMaster {
		t.Errorf("master role = %q, want M", got)
	}
}

func TestCreateGroupRejectsForeignMembers(t *testing.T) {
	_, master := fakePair(t, "aa:aa", "A")

	memberSrv := wamtest.NewServer(t)
	memberSrv.Handle("GetMainInfo", func(req wamtest.Request) []string {
		return []string{wamtest.OKBody("MainInfo", req.User,
			"<spkmacaddr>bb:bb</spkmacaddr><grouptype>S</grouptype>"+
				"<groupmainip>10.9.9.9</groupmainip>")}
	})
	member := newTestSpeaker(t, memberSrv)
	connect(t, member)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := master.CreateGroup(ctx, "G", []*Speaker{member})
	errType(t, err, ErrTypeGroup)
}

func TestCreateGroupValidation(t *testing.T) {
	sp := New("127.0.0.1")
	t.Cleanup(sp.Close)

	err := sp.CreateGroup(context.Background(), "G", nil)
	errType(t, err, ErrTypeInvalidArgument)

	err = sp.CreateGroup(context.Background(), "G", []*Speaker{sp})
	errType(t, err, ErrTypeInvalidArgument)
}

func TestDeleteGroup(t *testing.T) {
	masterSrv, master := fakePair(t, "aa:aa", "A")
	memberSrv, member := fakePair(t, "bb:bb", "B")

	// Make the master aware of its role.
	masterSrv.Push(wamtest.OKBody("MainInfo", "x",
		"<spkmacaddr>aa:aa</spkmacaddr><grouptype>M</grouptype>"))
	waitFor(t, func() bool { return master.State().Group.Role == event.GroupRoleMaster })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := master.DeleteGroup(ctx, []*Speaker{member}); err != nil {
		t.Fatalf("DeleteGroup() error = %v", err)
	}

	// Members leave before the master.
	if n := len(memberSrv.RequestsFor("SetUngroup")); n != 1 {
		t.Errorf("member received %d SetUngroup commands, want 1", n)
	}
	if n := len(masterSrv.RequestsFor("SetUngroup")); n != 1 {
		t.Errorf("master received %d SetUngroup commands, want 1", n)
	}
	if master.State().Group.Grouped() {
		t.Error("master still grouped after DeleteGroup")
	}
}

func TestDeleteGroupRequiresMaster(t *testing.T) {
	_, sp := fakePair(t, "aa:aa", "A")

	err := sp.DeleteGroup(context.Background(), nil)
	errType(t, err, ErrTypeGroup)
}

func TestSetGroupDissolve(t *testing.T) {
	masterSrv, master := fakePair(t, "aa:aa", "A")
	memberSrv, member := fakePair(t, "bb:bb", "B")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := master.SetGroup(ctx, "G", []*Speaker{member}, nil); err != nil {
		t.Fatalf("SetGroup() error = %v", err)
	}

	if n := len(memberSrv.RequestsFor("SetUngroup")); n != 1 {
		t.Errorf("member received %d SetUngroup commands, want 1", n)
	}
	if n := len(masterSrv.RequestsFor("SetUngroup")); n != 1 {
		t.Errorf("master received %d SetUngroup commands, want 1", n)
	}
}

func TestSetGroupNoChange(t *testing.T) {
	masterSrv, master := fakePair(t, "aa:aa", "A")
	_, member := fakePair(t, "bb:bb", "B")

	ctx := context.Background()
	if err := master.SetGroup(ctx, "G", []*Speaker{member}, []*Speaker{member}); err != nil {
		t.Fatalf("SetGroup() error = %v", err)
	}

	if n := len(masterSrv.RequestsFor("SetMultispkGroup")); n != 0 {
		t.Errorf("master received %d SetMultispkGroup commands for a no-op, want 0", n)
	}
}
